package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/ordering"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSongReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/songs/{id}/reviews",
		Summary:     "List song reviews",
		Description: "Returns every review of a song in sort order, with the score summary",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSongReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "writeReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/songs/{id}/review",
		Summary:     "Write review",
		Description: "Creates or updates the caller's blurb and score for a song",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleWriteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/move/{direction}",
		Summary:     "Move review",
		Description: "Moves a review to the top or bottom, or one place up or down",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMoveReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "bulkReorderReviews",
		Method:      http.MethodPost,
		Path:        "/api/v1/songs/{id}/reviews/reorder",
		Summary:     "Bulk reorder",
		Description: "Sets the order of a song's reviews. Accepts form-<i>-id / form-<i>-sort_order " +
			"form fields or a JSON body of {\"reviews\": [{\"id\", \"sort_order\"}]}.",
		Tags:     []string{"Reviews"},
		Security: []map[string][]string{{"bearer": {}}},
	}, s.handleBulkReorder)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{id}/remove",
		Summary:     "Remove review",
		Description: "Removes a review from its song and renumbers the rest",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveReview)
}

// SongReviewsOutput wraps a song's reviews for Huma.
type SongReviewsOutput struct {
	Body *service.SongReviews
}

// WriteReviewInput wraps the write review request for Huma.
type WriteReviewInput struct {
	ID   string `path:"id" doc:"Song ID"`
	Body service.WriteReviewRequest
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// MoveReviewInput identifies a review and the move to apply.
type MoveReviewInput struct {
	ID        string `path:"id" doc:"Review ID"`
	Direction string `path:"direction" enum:"top,bottom,up,down" doc:"Move to apply"`
}

// ReorderOutput wraps a reorder result for Huma.
type ReorderOutput struct {
	Body *service.ReorderResult
}

// BulkReorderInput carries the undecoded submission so both encodings
// reach the same validation.
type BulkReorderInput struct {
	ID          string `path:"id" doc:"Song ID"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

// ReviewIDInput identifies a review.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

func (s *Server) handleListSongReviews(ctx context.Context, input *SongIDInput) (*SongReviewsOutput, error) {
	if _, err := requireWriter(ctx); err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.ListForSong(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SongReviewsOutput{Body: reviews}, nil
}

func (s *Server) handleWriteReview(ctx context.Context, input *WriteReviewInput) (*ReviewOutput, error) {
	writer, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Write(ctx, writer.ID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleMoveReview(ctx context.Context, input *MoveReviewInput) (*ReorderOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Reorder.Move(ctx, input.ID, ordering.Move(input.Direction))
	if err != nil {
		return nil, err
	}
	return &ReorderOutput{Body: result}, nil
}

func (s *Server) handleBulkReorder(ctx context.Context, input *BulkReorderInput) (*ReorderOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	entries, err := decodeBulk(input.ContentType, input.RawBody)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Reorder.BulkReorder(ctx, input.ID, entries)
	if err != nil {
		return nil, err
	}
	return &ReorderOutput{Body: result}, nil
}

func (s *Server) handleRemoveReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	review, err := s.services.Review.Remove(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

// jsonBulkEntry accepts sort_order as a number, a string or null.
type jsonBulkEntry struct {
	ID        string          `json:"id"`
	SortOrder json.RawMessage `json:"sort_order"`
}

// decodeBulk turns a form-encoded or JSON submission into raw entries.
// Orders are kept as submitted text; ordering.ValidateBulk judges them.
func decodeBulk(contentType string, body []byte) ([]ordering.BulkEntry, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)

	switch mediaType {
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, domainerrors.Validation("malformed form body").WithCause(err)
		}
		entries, err := ordering.ParseBulkForm(form)
		var ve *ordering.ValidationError
		if errors.As(err, &ve) {
			return nil, domainerrors.ValidationWithDetails(ve.Message, ve.Fields)
		}
		return entries, err

	case "application/json", "":
		var payload struct {
			Reviews []jsonBulkEntry `json:"reviews"`
		}
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&payload); err != nil {
			return nil, domainerrors.Validation("malformed JSON body").WithCause(err)
		}

		entries := make([]ordering.BulkEntry, len(payload.Reviews))
		for i, e := range payload.Reviews {
			entries[i] = ordering.BulkEntry{ID: e.ID, SortOrder: rawOrder(e.SortOrder)}
		}
		return entries, nil

	default:
		return nil, domainerrors.Validationf("unsupported content type %q", mediaType)
	}
}

func rawOrder(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		if s, err := strconv.Unquote(string(raw)); err == nil {
			return s
		}
	}
	return string(raw)
}
