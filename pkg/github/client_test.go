package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/ghorbit/pkg/cache"
	"github.com/matzehuels/ghorbit/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	return NewClient(opts)
}

func TestFollowing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/following" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"login":"alice","html_url":"https://github.com/alice"}]`))
	}), Options{})

	users, err := c.Following(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Following() error: %v", err)
	}
	if len(users) != 1 || users[0].Login != "alice" {
		t.Errorf("Following() = %+v", users)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.Code
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, errors.ErrCodeNotFound},
		{"server error", http.StatusBadGateway, "", errors.ErrCodeServer},
		{"not ready", http.StatusAccepted, "", errors.ErrCodeNotReady},
		{"invalid params", http.StatusUnprocessableEntity, "", errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}), Options{})

			_, err := c.Orgs(context.Background(), "octocat")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestEmptyRepoIsZeroItems(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusConflict} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}), Options{})

		users, err := c.Contributors(context.Background(), "octocat", "empty-repo")
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if len(users) != 0 {
			t.Errorf("status %d: got %d users, want 0", status, len(users))
		}
	}
}

func TestRateLimited(t *testing.T) {
	var notified atomic.Int32
	var lastMsg string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}), Options{
		Notify: func(msg string) {
			notified.Add(1)
			lastMsg = msg
		},
	})

	ctx := context.Background()
	var rle *errors.RateLimitedError
	for range 3 {
		_, err := c.Followers(ctx, "octocat")
		if err == nil {
			t.Fatal("expected error")
		}
		if !stderrors.As(err, &rle) {
			t.Fatalf("error %T is not RateLimitedError", err)
		}
	}

	if rle.Message != "API rate limit exceeded" {
		t.Errorf("Message = %q", rle.Message)
	}
	if got := errors.GetCode(rle); got != errors.ErrCodeRateLimited {
		t.Errorf("GetCode() = %v, want %v", got, errors.ErrCodeRateLimited)
	}
	// Repeated denials within the cooldown window notify only once.
	if got := notified.Load(); got != 1 {
		t.Errorf("notify fired %d times, want 1", got)
	}
	if lastMsg != "API rate limit exceeded" {
		t.Errorf("notify message = %q", lastMsg)
	}
}

func TestRequestTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}), Options{Timeout: 20 * time.Millisecond})

	_, err := c.Followers(context.Background(), "octocat")
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("error = %v, want code %v", err, errors.ErrCodeTimeout)
	}
}

func TestRepoNameValidated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	}), Options{})

	ctx := context.Background()
	if _, err := c.Contributors(ctx, "octocat", "../meta"); !errors.Is(err, errors.ErrCodeInvalidRepo) {
		t.Errorf("Contributors error = %v, want code %v", err, errors.ErrCodeInvalidRepo)
	}
	if _, err := c.Collaborators(ctx, "octocat", ""); !errors.Is(err, errors.ErrCodeInvalidRepo) {
		t.Errorf("Collaborators error = %v, want code %v", err, errors.ErrCodeInvalidRepo)
	}
	if _, err := c.ContributorStats(ctx, "octocat", "a b"); !errors.Is(err, errors.ErrCodeInvalidRepo) {
		t.Errorf("ContributorStats error = %v, want code %v", err, errors.ErrCodeInvalidRepo)
	}
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}), Options{})

	_, err := c.Repos(context.Background(), "octocat")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeMalformed {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeMalformed)
	}
	// Raw text is carried in the message for upstream handling.
	if msg := errors.UserMessage(err); msg == "" {
		t.Error("malformed error should carry the raw body")
	}
}

func TestAppCredentialsAppended(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}), Options{Auth: Auth{ClientID: "id123", ClientSecret: "sec456"}})

	if _, err := c.Repos(context.Background(), "octocat"); err != nil {
		t.Fatal(err)
	}
	// repos path already has ?type=all, so credentials join with &
	want := "type=all&client_id=id123&client_secret=sec456"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestTokenHeader(t *testing.T) {
	var gotAuth, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}), Options{Auth: Auth{Token: "tok", ClientID: "ignored"}})

	if _, err := c.Following(context.Background(), "octocat"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	// Token auth never leaks app credentials into the query string.
	if gotQuery != "" {
		t.Errorf("query = %q, want empty", gotQuery)
	}
}

func TestResponseCaching(t *testing.T) {
	var hits atomic.Int32
	fc, _ := cache.NewFileCache(t.TempDir())
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"login":"alice"}]`))
	}), Options{Cache: fc, TTL: time.Hour})

	ctx := context.Background()
	for range 3 {
		users, err := c.Following(ctx, "octocat")
		if err != nil {
			t.Fatal(err)
		}
		if len(users) != 1 {
			t.Fatalf("got %d users", len(users))
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("upstream hit %d times, want 1", got)
	}
}

func TestSearchUsers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "octo cat" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("per_page = %q", got)
		}
		w.Write([]byte(`{"total_count":1,"items":[{"login":"octocat"}]}`))
	}), Options{})

	users, err := c.SearchUsers(context.Background(), "octo cat", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Login != "octocat" {
		t.Errorf("SearchUsers() = %+v", users)
	}
}
