package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/n0madic/go-feedclient/internal/apiclient"
	"github.com/n0madic/go-feedclient/internal/auth"
	"github.com/n0madic/go-feedclient/internal/config"
)

var items = []Item{
	{ID: 1, Author: Author{ID: 7, Username: "alice"}, Title: "one", CreateTime: 100, LikesCount: 5},
	{ID: 2, Author: Author{ID: 7, Username: "alice"}, Title: "two", CreateTime: 200, LikesCount: 9},
	{ID: 3, Author: Author{ID: 8, Username: "bob"}, Title: "three", CreateTime: 300, LikesCount: 5},
	{ID: 4, Author: Author{ID: 8, Username: "bob"}, Title: "four", CreateTime: 400, LikesCount: 0},
}

// fakeBackend mimics the /feed routes: the public lists mark video 2 as liked
// for the signed-in viewer, listByFollowing requires a token and returns bob's
// videos.
func fakeBackend(t *testing.T, token string) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
	clamp := func(limit int) int {
		if limit <= 0 || limit > 50 {
			return 10
		}
		return limit
	}
	view := func(r *http.Request, list []Item) []Item {
		signedIn := r.Header.Get("Authorization") == "Bearer "+token
		out := make([]Item, len(list))
		copy(out, list)
		for i := range out {
			out[i].IsLiked = signedIn && out[i].ID == 2
		}
		return out
	}
	newestFirst := func(filter func(Item) bool) []Item {
		var out []Item
		for _, it := range items {
			if filter(it) {
				out = append(out, it)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreateTime > out[j].CreateTime })
		return out
	}
	timePage := func(list []Item, limit int) TimePage {
		page := TimePage{Videos: []Item{}}
		if len(list) > limit {
			list, page.HasMore = list[:limit], true
		}
		page.Videos = append(page.Videos, list...)
		if len(list) > 0 {
			page.NextTime = list[len(list)-1].CreateTime
		}
		return page
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /feed/listLatest", func(w http.ResponseWriter, r *http.Request) {
		var req listLatestRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		list := newestFirst(func(it Item) bool { return req.LatestTime == 0 || it.CreateTime < req.LatestTime })
		writeJSON(w, http.StatusOK, timePage(view(r, list), clamp(req.Limit)))
	})
	mux.HandleFunc("POST /feed/listLikesCount", func(w http.ResponseWriter, r *http.Request) {
		var req listLikesCountRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if (req.LikesCountBefore == nil) != (req.IDBefore == nil) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "likes_count_before and id_before must be provided together"})
			return
		}
		var list []Item
		for _, it := range items {
			if req.LikesCountBefore != nil {
				lc, id := *req.LikesCountBefore, *req.IDBefore
				if it.LikesCount > lc || (it.LikesCount == lc && it.ID >= id) {
					continue
				}
			}
			list = append(list, it)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].LikesCount != list[j].LikesCount {
				return list[i].LikesCount > list[j].LikesCount
			}
			return list[i].ID > list[j].ID
		})
		page := LikesCountPage{Videos: []Item{}}
		if limit := clamp(req.Limit); len(list) > limit {
			list, page.HasMore = list[:limit], true
			last := list[len(list)-1]
			page.NextLikesCountBefore, page.NextIDBefore = &last.LikesCount, &last.ID
		}
		page.Videos = append(page.Videos, view(r, list)...)
		writeJSON(w, http.StatusOK, page)
	})
	mux.HandleFunc("POST /feed/listByFollowing", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			return
		}
		var req listByFollowingRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		list := newestFirst(func(it Item) bool { return it.Author.ID == 8 })
		writeJSON(w, http.StatusOK, timePage(view(r, list), clamp(req.Limit)))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newService(baseURL, token string) *Service {
	return NewService(apiclient.New(&config.Config{BaseURL: baseURL, Timeout: 5 * time.Second, Token: token}))
}

func ids(list []Item) []uint {
	out := make([]uint, 0, len(list))
	for _, it := range list {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListLatestPaging(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())
	ts := fakeBackend(t, "tok")
	s := newService(ts.URL, "")

	page, err := s.ListLatest(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if got := ids(page.Videos); !equalIDs(got, []uint{4, 3}) {
		t.Errorf("first page: got %v", got)
	}
	if !page.HasMore || page.NextTime != 300 {
		t.Errorf("cursor: has_more=%v next_time=%d", page.HasMore, page.NextTime)
	}

	page, err = s.ListLatest(context.Background(), 2, page.NextTime)
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if got := ids(page.Videos); !equalIDs(got, []uint{2, 1}) {
		t.Errorf("second page: got %v", got)
	}
	if page.HasMore {
		t.Error("second page should be the last")
	}
	for _, it := range page.Videos {
		if it.IsLiked {
			t.Errorf("anonymous viewer saw is_liked on %d", it.ID)
		}
	}
}

func TestListLatestSignedIn(t *testing.T) {
	ts := fakeBackend(t, "tok")
	s := newService(ts.URL, "tok")

	page, err := s.ListLatest(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ListLatest failed: %v", err)
	}
	if len(page.Videos) != 4 {
		t.Fatalf("expected default page with 4 videos, got %d", len(page.Videos))
	}
	for _, it := range page.Videos {
		if it.IsLiked != (it.ID == 2) {
			t.Errorf("video %d: is_liked=%v", it.ID, it.IsLiked)
		}
	}
	if page.Videos[0].Author.Username != "bob" {
		t.Errorf("author: got %+v", page.Videos[0].Author)
	}
}

func TestListLikesCountPaging(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())
	ts := fakeBackend(t, "tok")
	s := newService(ts.URL, "")

	var seen []uint
	var cursor *LikesCountCursor
	for pages := 0; ; pages++ {
		if pages > 4 {
			t.Fatal("cursor never ended")
		}
		page, err := s.ListLikesCount(context.Background(), 3, cursor)
		if err != nil {
			t.Fatalf("ListLikesCount failed: %v", err)
		}
		seen = append(seen, ids(page.Videos)...)
		if cursor = page.Next(); cursor == nil {
			break
		}
	}
	if !equalIDs(seen, []uint{2, 3, 1, 4}) {
		t.Errorf("likes order: got %v", seen)
	}
}

func TestLikesCountPageNext(t *testing.T) {
	lc, id := int64(5), uint(3)
	if (LikesCountPage{HasMore: true}).Next() != nil {
		t.Error("missing cursor fields should end paging")
	}
	if (LikesCountPage{NextLikesCountBefore: &lc, NextIDBefore: &id}).Next() != nil {
		t.Error("has_more=false should end paging")
	}
	next := LikesCountPage{HasMore: true, NextLikesCountBefore: &lc, NextIDBefore: &id}.Next()
	if next == nil || next.LikesCount != 5 || next.ID != 3 {
		t.Errorf("unexpected cursor %+v", next)
	}
}

func TestListByFollowing(t *testing.T) {
	ts := fakeBackend(t, "tok")
	s := newService(ts.URL, "tok")

	page, err := s.ListByFollowing(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListByFollowing failed: %v", err)
	}
	if got := ids(page.Videos); !equalIDs(got, []uint{4, 3}) {
		t.Errorf("following feed: got %v", got)
	}
}

func TestListByFollowingRequiresLogin(t *testing.T) {
	t.Setenv("FEEDCLIENT_HOME", t.TempDir())
	ts := fakeBackend(t, "tok")

	if _, err := newService(ts.URL, "").ListByFollowing(context.Background(), 10); !errors.Is(err, auth.ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
	if _, err := newService(ts.URL, "stale").ListByFollowing(context.Background(), 10); !apiclient.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
}
