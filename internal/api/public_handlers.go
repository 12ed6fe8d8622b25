package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	"github.com/singlesjukebox/jukebox-server/internal/search"
	"github.com/singlesjukebox/jukebox-server/internal/service"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

func (s *Server) registerPublicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/posts",
		Summary:     "List posts",
		Description: "Returns published songs, newest first",
		Tags:        []string{"Public"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/posts/{songID}",
		Summary:     "Get post",
		Tags:        []string{"Public"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/posts/{songID}/comments",
		Summary:     "List comments",
		Tags:        []string{"Public"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/public/posts/{songID}/comments",
		Summary:     "Add comment",
		Description: "Posts a reader comment. Each client may only comment so often.",
		Tags:        []string{"Public"},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/search",
		Summary:     "Search posts",
		Tags:        []string{"Public"},
	}, s.handleSearchPosts)
}

// ListPostsInput selects a page of posts.
type ListPostsInput struct {
	Page int `query:"page" minimum:"0" doc:"Page number, starting at 1"`
}

// PostListOutput wraps a page of posts for Huma.
type PostListOutput struct {
	Body store.PageResult[service.PostListItem]
}

// PostIDInput identifies a public post by its song.
type PostIDInput struct {
	SongID string `path:"songID" doc:"Song ID"`
}

// PostOutput wraps a post for Huma.
type PostOutput struct {
	Body *service.PostView
}

// CommentListOutput wraps comments for Huma.
type CommentListOutput struct {
	Body []*domain.Comment
}

// AddCommentInput wraps a reader comment for Huma.
type AddCommentInput struct {
	SongID string `path:"songID" doc:"Song ID"`
	Body   service.AddCommentRequest
}

// CommentOutput wraps a comment for Huma.
type CommentOutput struct {
	Body *domain.Comment
}

// SearchInput is a full-text query.
type SearchInput struct {
	Q      string `query:"q" doc:"Search query"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.Results
}

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*PostListOutput, error) {
	page, err := s.services.Public.ListPosts(ctx, input.Page)
	if err != nil {
		return nil, err
	}
	return &PostListOutput{Body: page}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostIDInput) (*PostOutput, error) {
	post, err := s.services.Public.GetPost(ctx, input.SongID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *PostIDInput) (*CommentListOutput, error) {
	comments, err := s.services.Public.ListComments(ctx, input.SongID)
	if err != nil {
		return nil, err
	}
	return &CommentListOutput{Body: comments}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	comment, err := s.services.Public.AddComment(ctx, input.SongID, clientIP(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleSearchPosts(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := s.services.Public.Search(ctx, input.Q, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}
