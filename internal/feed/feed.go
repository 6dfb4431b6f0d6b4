package feed

import (
	"context"

	"github.com/n0madic/go-feedclient/internal/apiclient"
)

const (
	listLatestPath      = "/feed/listLatest"
	listLikesCountPath  = "/feed/listLikesCount"
	listByFollowingPath = "/feed/listByFollowing"
)

// Author is the account that published a feed item.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Item is a video as shown in a feed. IsLiked is only set for signed-in
// viewers.
type Item struct {
	ID          uint   `json:"id"`
	Author      Author `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PlayURL     string `json:"play_url"`
	CoverURL    string `json:"cover_url"`
	CreateTime  int64  `json:"create_time"`
	LikesCount  int64  `json:"likes_count"`
	IsLiked     bool   `json:"is_liked"`
}

// TimePage is a page of a time-ordered feed. NextTime is the unix-seconds
// cursor for the following page.
type TimePage struct {
	Videos   []Item `json:"video_list"`
	NextTime int64  `json:"next_time"`
	HasMore  bool   `json:"has_more"`
}

// LikesCountCursor positions the popularity feed after a given item.
type LikesCountCursor struct {
	LikesCount int64
	ID         uint
}

// LikesCountPage is a page of the popularity feed. Next is nil on the last
// page.
type LikesCountPage struct {
	Videos               []Item `json:"video_list"`
	NextLikesCountBefore *int64 `json:"next_likes_count_before,omitempty"`
	NextIDBefore         *uint  `json:"next_id_before,omitempty"`
	HasMore              bool   `json:"has_more"`
}

// Next returns the cursor for the following page.
func (p LikesCountPage) Next() *LikesCountCursor {
	if !p.HasMore || p.NextLikesCountBefore == nil || p.NextIDBefore == nil {
		return nil
	}
	return &LikesCountCursor{LikesCount: *p.NextLikesCountBefore, ID: *p.NextIDBefore}
}

type listLatestRequest struct {
	Limit      int   `json:"limit"`
	LatestTime int64 `json:"latest_time"`
}

type listLikesCountRequest struct {
	Limit            int    `json:"limit"`
	LikesCountBefore *int64 `json:"likes_count_before,omitempty"`
	IDBefore         *uint  `json:"id_before,omitempty"`
}

type listByFollowingRequest struct {
	Limit int `json:"limit"`
}

// Service exposes the /feed endpoints. The backend clamps limit to its own
// range, so zero asks for the default page size.
type Service struct {
	client *apiclient.Client
}

// NewService creates a feed service on top of c.
func NewService(c *apiclient.Client) *Service {
	return &Service{client: c}
}

// ListLatest lists videos newest first, starting before latestTime (unix
// seconds, 0 for now). The session token is sent when available so the
// backend can fill IsLiked.
func (s *Service) ListLatest(ctx context.Context, limit int, latestTime int64) (TimePage, error) {
	return apiclient.PostJSON[TimePage](ctx, s.client, listLatestPath,
		listLatestRequest{Limit: limit, LatestTime: latestTime}, apiclient.WithOptionalAuth())
}

// ListLikesCount lists videos by likes, most liked first. A nil cursor starts
// from the top.
func (s *Service) ListLikesCount(ctx context.Context, limit int, cursor *LikesCountCursor) (LikesCountPage, error) {
	req := listLikesCountRequest{Limit: limit}
	if cursor != nil {
		req.LikesCountBefore = &cursor.LikesCount
		req.IDBefore = &cursor.ID
	}
	return apiclient.PostJSON[LikesCountPage](ctx, s.client, listLikesCountPath, req, apiclient.WithOptionalAuth())
}

// ListByFollowing lists the latest videos of the accounts the signed-in
// account follows.
func (s *Service) ListByFollowing(ctx context.Context, limit int) (TimePage, error) {
	return apiclient.PostJSON[TimePage](ctx, s.client, listByFollowingPath,
		listByFollowingRequest{Limit: limit}, apiclient.WithAuth())
}
