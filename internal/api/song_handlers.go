package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/media"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func (s *Server) registerSongRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSongs",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs",
		Summary:     "List songs",
		Description: "Returns songs with their score summary, newest upload first",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSongs)

	huma.Register(s.api, huma.Operation{
		OperationID: "createSong",
		Method:      http.MethodPost,
		Path:        "/api/v1/songs",
		Summary:     "Create song",
		Description: "Adds an open song",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSong",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}",
		Summary:     "Get song",
		Description: "Returns a song with its blurb count, average score and controversy index",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSong)

	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadSongMP3",
		Method:       http.MethodPost,
		Path:         "/api/v1/songs/{id}/mp3",
		Summary:      "Upload MP3",
		Description:  "Stores the song's audio. ID3 tags fill a blank artist or title.",
		Tags:         []string{"Songs"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: media.MaxUploadBytes,
	}, s.handleUploadMP3)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewSong",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}/preview",
		Summary:     "Preview post",
		Description: "Renders the song's post from its counted reviews in order",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePreviewSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeSong",
		Method:      http.MethodPost,
		Path:        "/api/v1/songs/{id}/close",
		Summary:     "Close song",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCloseSong)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishSong",
		Method:      http.MethodPost,
		Path:        "/api/v1/songs/{id}/publish",
		Summary:     "Publish song",
		Description: "Publishes now, or schedules when publish_at is in the future",
		Tags:        []string{"Songs"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishSong)
}

// ListSongsInput filters the song list.
type ListSongsInput struct {
	Status string `query:"status" doc:"Comma-separated song statuses; empty for all"`
}

// SongListOutput wraps a list of songs for Huma.
type SongListOutput struct {
	Body []*service.SongDetail
}

// CreateSongInput wraps the create song request for Huma.
type CreateSongInput struct {
	Body service.CreateSongRequest
}

// SongIDInput identifies a song.
type SongIDInput struct {
	ID string `path:"id" doc:"Song ID"`
}

// SongDetailOutput wraps a song with its summary for Huma.
type SongDetailOutput struct {
	Body *service.SongDetail
}

// SongOutput wraps a song for Huma.
type SongOutput struct {
	Body *domain.Song
}

// UploadMP3Input carries the raw audio bytes.
type UploadMP3Input struct {
	ID          string `path:"id" doc:"Song ID"`
	ContentType string `header:"Content-Type" doc:"Audio content type"`
	RawBody     []byte
}

// PreviewResponse is a rendered post.
type PreviewResponse struct {
	HTML string `json:"html" doc:"Rendered post body"`
}

// PreviewOutput wraps the preview for Huma.
type PreviewOutput struct {
	Body PreviewResponse
}

// PublishSongInput optionally schedules the publish.
type PublishSongInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body *struct {
		PublishAt *time.Time `json:"publish_at,omitempty" doc:"Publish at this time instead of now"`
	}
}

// PublishOutput wraps a publish result for Huma.
type PublishOutput struct {
	Body *service.PublishResult
}

func (s *Server) handleListSongs(ctx context.Context, input *ListSongsInput) (*SongListOutput, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}

	var statuses []domain.SongStatus
	for part := range strings.SplitSeq(input.Status, ",") {
		if part = strings.TrimSpace(part); part != "" {
			statuses = append(statuses, domain.SongStatus(part))
		}
	}

	songs, err := s.services.Song.List(ctx, statuses)
	if err != nil {
		return nil, err
	}
	return &SongListOutput{Body: songs}, nil
}

func (s *Server) handleCreateSong(ctx context.Context, input *CreateSongInput) (*SongOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	song, err := s.services.Song.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: song}, nil
}

func (s *Server) handleGetSong(ctx context.Context, input *SongIDInput) (*SongDetailOutput, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}

	song, err := s.services.Song.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongDetailOutput{Body: song}, nil
}

func (s *Server) handleUploadMP3(ctx context.Context, input *UploadMP3Input) (*SongOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("mp3 upload", "song_id", input.ID, "content_type", input.ContentType, "body_size", len(input.RawBody))
	song, err := s.services.Song.UploadMP3(ctx, input.ID, bytes.NewReader(input.RawBody))
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: song}, nil
}

func (s *Server) handlePreviewSong(ctx context.Context, input *SongIDInput) (*PreviewOutput, error) {
	writer, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	html, err := s.services.Publish.Preview(ctx, input.ID, writer.IsStaff || writer.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &PreviewOutput{Body: PreviewResponse{HTML: html}}, nil
}

func (s *Server) handleCloseSong(ctx context.Context, input *SongIDInput) (*SongOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	song, err := s.services.Song.Close(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongOutput{Body: song}, nil
}

func (s *Server) handlePublishSong(ctx context.Context, input *PublishSongInput) (*PublishOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	var at *time.Time
	if input.Body != nil {
		at = input.Body.PublishAt
	}
	res, err := s.services.Publish.Publish(ctx, input.ID, at)
	if err != nil {
		return nil, err
	}
	return &PublishOutput{Body: res}, nil
}
