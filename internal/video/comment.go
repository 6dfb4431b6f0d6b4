package video

import (
	"context"
	"time"

	"github.com/n0madic/go-feedclient/internal/apiclient"
)

const (
	listCommentsPath   = "/comment/listAll"
	publishCommentPath = "/comment/publish"
	deleteCommentPath  = "/comment/delete"
)

// Comment is a comment on a video.
type Comment struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	VideoID   uint      `json:"video_id"`
	AuthorID  uint      `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type listCommentsRequest struct {
	VideoID uint `json:"video_id"`
}

type publishCommentRequest struct {
	VideoID uint   `json:"video_id"`
	Content string `json:"content"`
}

type deleteCommentRequest struct {
	CommentID uint `json:"comment_id"`
}

// ListComments lists every comment on a video.
func (s *Service) ListComments(ctx context.Context, videoID uint) ([]Comment, error) {
	return apiclient.PostJSON[[]Comment](ctx, s.client, listCommentsPath, listCommentsRequest{VideoID: videoID})
}

// PublishComment comments on a video as the signed-in account.
func (s *Service) PublishComment(ctx context.Context, videoID uint, content string) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, publishCommentPath,
		publishCommentRequest{VideoID: videoID, Content: content}, apiclient.WithAuth())
	return resp.Message, err
}

// DeleteComment deletes a comment. The backend only lets its author do so.
func (s *Service) DeleteComment(ctx context.Context, commentID uint) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, deleteCommentPath,
		deleteCommentRequest{CommentID: commentID}, apiclient.WithAuth())
	return resp.Message, err
}
