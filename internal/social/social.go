package social

import (
	"context"

	"github.com/n0madic/go-feedclient/internal/account"
	"github.com/n0madic/go-feedclient/internal/apiclient"
)

const (
	followPath          = "/social/follow"
	unfollowPath        = "/social/unfollow"
	getAllFollowersPath = "/social/getAllFollowers"
	getAllVloggersPath  = "/social/getAllVloggers"
)

type vloggerRequest struct {
	VloggerID uint `json:"vlogger_id"`
}

type followerRequest struct {
	FollowerID uint `json:"follower_id"`
}

type followersResponse struct {
	Followers []account.Account `json:"followers"`
}

type vloggersResponse struct {
	Vloggers []account.Account `json:"vloggers"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Service exposes the /social endpoints. Every route requires a session.
type Service struct {
	client *apiclient.Client
}

// NewService creates a social service on top of c.
func NewService(c *apiclient.Client) *Service {
	return &Service{client: c}
}

// Follow subscribes the signed-in account to a vlogger.
func (s *Service) Follow(ctx context.Context, vloggerID uint) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, followPath, vloggerRequest{VloggerID: vloggerID}, apiclient.WithAuth())
	return resp.Message, err
}

// Unfollow removes the subscription.
func (s *Service) Unfollow(ctx context.Context, vloggerID uint) (string, error) {
	resp, err := apiclient.PostJSON[messageResponse](ctx, s.client, unfollowPath, vloggerRequest{VloggerID: vloggerID}, apiclient.WithAuth())
	return resp.Message, err
}

// Followers lists the accounts following vloggerID; 0 means the signed-in
// account.
func (s *Service) Followers(ctx context.Context, vloggerID uint) ([]account.Account, error) {
	resp, err := apiclient.PostJSON[followersResponse](ctx, s.client, getAllFollowersPath,
		vloggerRequest{VloggerID: vloggerID}, apiclient.WithAuth())
	return resp.Followers, err
}

// Vloggers lists the accounts followerID follows; 0 means the signed-in
// account.
func (s *Service) Vloggers(ctx context.Context, followerID uint) ([]account.Account, error) {
	resp, err := apiclient.PostJSON[vloggersResponse](ctx, s.client, getAllVloggersPath,
		followerRequest{FollowerID: followerID}, apiclient.WithAuth())
	return resp.Vloggers, err
}
