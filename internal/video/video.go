package video

import (
	"context"
	"time"

	"github.com/n0madic/go-feedclient/internal/apiclient"
)

const (
	publishPath        = "/video/publish"
	listByAuthorIDPath = "/video/listByAuthorID"
	getDetailPath      = "/video/getDetail"
)

// Video is a published video as returned by the backend.
type Video struct {
	ID          uint      `json:"id"`
	AuthorID    uint      `json:"author_id"`
	Username    string    `json:"username"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PlayURL     string    `json:"play_url"`
	CoverURL    string    `json:"cover_url"`
	CreateTime  time.Time `json:"create_time"`
	LikesCount  int64     `json:"likes_count"`
}

// PublishInput is the body of a publish request.
type PublishInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PlayURL     string `json:"play_url"`
	CoverURL    string `json:"cover_url"`
}

type listByAuthorIDRequest struct {
	AuthorID uint `json:"author_id"`
}

type getDetailRequest struct {
	ID uint `json:"id"`
}

// Service exposes the /video endpoints. Arguments are forwarded as-is; the
// backend owns validation.
type Service struct {
	client *apiclient.Client
}

// NewService creates a video service on top of c.
func NewService(c *apiclient.Client) *Service {
	return &Service{client: c}
}

// Publish creates a video authored by the logged-in account.
func (s *Service) Publish(ctx context.Context, in PublishInput) (Video, error) {
	return apiclient.PostJSON[Video](ctx, s.client, publishPath, in, apiclient.WithAuth())
}

// ListByAuthorID lists the videos of an author.
func (s *Service) ListByAuthorID(ctx context.Context, authorID uint) ([]Video, error) {
	return apiclient.PostJSON[[]Video](ctx, s.client, listByAuthorIDPath, listByAuthorIDRequest{AuthorID: authorID})
}

// GetDetail fetches a single video.
func (s *Service) GetDetail(ctx context.Context, id uint) (Video, error) {
	return apiclient.PostJSON[Video](ctx, s.client, getDetailPath, getDetailRequest{ID: id})
}
