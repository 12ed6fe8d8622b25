package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func (s *Server) registerWriterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createWriter",
		Method:      http.MethodPost,
		Path:        "/api/v1/writers",
		Summary:     "Create writer",
		Description: "Adds a writer account (admin only)",
		Tags:        []string{"Writers"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateWriter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWriter",
		Method:      http.MethodGet,
		Path:        "/api/v1/writers/{id}",
		Summary:     "Get writer",
		Tags:        []string{"Writers"},
	}, s.handleGetWriter)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWriterBlurbs",
		Method:      http.MethodGet,
		Path:        "/api/v1/writers/{id}/blurbs",
		Summary:     "Writer blurbs",
		Description: "Returns a writer's blurbs, filtered by song status and year",
		Tags:        []string{"Writers"},
	}, s.handleGetWriterBlurbs)
}

// CreateWriterInput wraps the create writer request for Huma.
type CreateWriterInput struct {
	Body service.CreateWriterRequest
}

// WriterInput identifies a writer.
type WriterInput struct {
	ID string `path:"id" doc:"Writer ID"`
}

// WriterBlurbsInput selects which of a writer's blurbs to list.
type WriterBlurbsInput struct {
	ID     string `path:"id" doc:"Writer ID"`
	Status string `query:"status" doc:"saved or published; empty for both"`
	Year   int    `query:"year" minimum:"0" doc:"Only blurbs written this year; 0 for every year"`
}

// WriterBlurbsOutput wraps a writer's blurbs for Huma.
type WriterBlurbsOutput struct {
	Body *service.WriterBlurbs
}

func (s *Server) handleCreateWriter(ctx context.Context, input *CreateWriterInput) (*WriterOutput, error) {
	caller, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin {
		return nil, domainerrors.Forbidden("admin access required")
	}

	writer, err := s.services.Writer.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &WriterOutput{Body: writer}, nil
}

func (s *Server) handleGetWriter(ctx context.Context, input *WriterInput) (*WriterOutput, error) {
	writer, err := s.services.Writer.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &WriterOutput{Body: writer}, nil
}

func (s *Server) handleGetWriterBlurbs(ctx context.Context, input *WriterBlurbsInput) (*WriterBlurbsOutput, error) {
	blurbs, err := s.services.Writer.Blurbs(ctx, input.ID, service.BlurbQuery{
		Bucket: input.Status,
		Year:   input.Year,
	})
	if err != nil {
		return nil, err
	}
	return &WriterBlurbsOutput{Body: blurbs}, nil
}
