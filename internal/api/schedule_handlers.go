package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func (s *Server) registerScheduleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSchedule",
		Method:      http.MethodGet,
		Path:        "/api/v1/schedule",
		Summary:     "Current week",
		Description: "Returns the current week, Monday to Saturday, with each song's summary",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSchedule)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWeek",
		Method:      http.MethodGet,
		Path:        "/api/v1/schedule/weeks/{id}",
		Summary:     "Get week",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetWeek)

	huma.Register(s.api, huma.Operation{
		OperationID: "createWeek",
		Method:      http.MethodPost,
		Path:        "/api/v1/schedule/weeks",
		Summary:     "Create week",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateWeek)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCurrentWeek",
		Method:      http.MethodPost,
		Path:        "/api/v1/schedule/weeks/{id}/current",
		Summary:     "Set current week",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetCurrentWeek)

	huma.Register(s.api, huma.Operation{
		OperationID: "scheduleSong",
		Method:      http.MethodPost,
		Path:        "/api/v1/schedule/weeks/{id}/days/{day}/songs",
		Summary:     "Schedule song",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleScheduleSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "unscheduleSong",
		Method:      http.MethodDelete,
		Path:        "/api/v1/schedule/weeks/{id}/days/{day}/songs/{songID}",
		Summary:     "Unschedule song",
		Tags:        []string{"Schedule"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnscheduleSong)
}

// WeekViewOutput wraps a resolved week for Huma.
type WeekViewOutput struct {
	Body *service.WeekView
}

// WeekOutput wraps a stored week for Huma.
type WeekOutput struct {
	Body *domain.ScheduledWeek
}

// WeekIDInput identifies a week.
type WeekIDInput struct {
	ID string `path:"id" doc:"Week ID"`
}

// CreateWeekInput wraps the create week request for Huma.
type CreateWeekInput struct {
	Body service.CreateWeekRequest
}

// ScheduleSongInput adds a song to a day.
type ScheduleSongInput struct {
	ID   string `path:"id" doc:"Week ID"`
	Day  string `path:"day" doc:"Day name, e.g. monday"`
	Body struct {
		SongID string `json:"song_id" doc:"Song ID"`
	}
}

// UnscheduleSongInput removes a song from a day.
type UnscheduleSongInput struct {
	ID     string `path:"id" doc:"Week ID"`
	Day    string `path:"day" doc:"Day name, e.g. monday"`
	SongID string `path:"songID" doc:"Song ID"`
}

func (s *Server) handleGetSchedule(ctx context.Context, _ *struct{}) (*WeekViewOutput, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}

	week, err := s.services.Schedule.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &WeekViewOutput{Body: week}, nil
}

func (s *Server) handleGetWeek(ctx context.Context, input *WeekIDInput) (*WeekViewOutput, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}

	week, err := s.services.Schedule.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &WeekViewOutput{Body: week}, nil
}

func (s *Server) handleCreateWeek(ctx context.Context, input *CreateWeekInput) (*WeekOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	week, err := s.services.Schedule.CreateWeek(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &WeekOutput{Body: week}, nil
}

func (s *Server) handleSetCurrentWeek(ctx context.Context, input *WeekIDInput) (*MessageOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Schedule.SetCurrent(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "current week set"}}, nil
}

func (s *Server) handleScheduleSong(ctx context.Context, input *ScheduleSongInput) (*WeekOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	week, err := s.services.Schedule.AddSong(ctx, input.ID, input.Day, input.Body.SongID)
	if err != nil {
		return nil, err
	}
	return &WeekOutput{Body: week}, nil
}

func (s *Server) handleUnscheduleSong(ctx context.Context, input *UnscheduleSongInput) (*WeekOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	week, err := s.services.Schedule.RemoveSong(ctx, input.ID, input.Day, input.SongID)
	if err != nil {
		return nil, err
	}
	return &WeekOutput{Body: week}, nil
}
