package video

import (
	"context"

	"github.com/n0madic/go-feedclient/internal/apiclient"
)

const (
	likePath    = "/like/like"
	unlikePath  = "/like/unlike"
	isLikedPath = "/like/isLiked"
)

type likeRequest struct {
	VideoID uint `json:"video_id"`
}

type isLikedResponse struct {
	IsLiked bool `json:"is_liked"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Like marks a video as liked by the signed-in account and returns the
// backend's confirmation message.
func (s *Service) Like(ctx context.Context, videoID uint) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, likePath, likeRequest{VideoID: videoID}, apiclient.WithAuth())
	return resp.Message, err
}

// Unlike removes the signed-in account's like.
func (s *Service) Unlike(ctx context.Context, videoID uint) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, unlikePath, likeRequest{VideoID: videoID}, apiclient.WithAuth())
	return resp.Message, err
}

// IsLiked reports whether the signed-in account likes the video.
func (s *Service) IsLiked(ctx context.Context, videoID uint) (bool, error) {
	resp, err := apiclient.PostJSON[isLikedResponse](ctx, s.client, isLikedPath, likeRequest{VideoID: videoID}, apiclient.WithAuth())
	return resp.IsLiked, err
}
