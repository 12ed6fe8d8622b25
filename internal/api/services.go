package api

import (
	"github.com/singlesjukebox/jukebox-server/internal/search"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// Services groups the business logic used by the API server.
type Services struct {
	Auth     *service.AuthService
	Writer   *service.WriterService
	Song     *service.SongService
	Review   *service.ReviewService
	Reorder  *service.ReorderService
	Schedule *service.ScheduleService
	Publish  *service.PublishService
	Public   *service.PublicService
	Search   *search.SearchIndex // health checks only; may be nil
}
