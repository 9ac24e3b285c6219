package connections

import (
	"context"
	"sync"
	"testing"

	"github.com/matzehuels/ghorbit/pkg/errors"
	"github.com/matzehuels/ghorbit/pkg/github"
)

// fakeAPI is an in-memory API implementation. Error fields make whole
// endpoints fail; calls records every endpoint invocation.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	following []github.User
	followers []github.User
	orgs      []github.Org
	members   map[string][]github.User // org -> members
	repos     []github.Repo
	contrib   map[string][]github.User // full name -> contributors
	collab    map[string][]github.User // full name -> collaborators

	followingErr error
	followersErr error
	orgsErr      error
	reposErr     error

	// onFollowing, when set, runs inside the Following call. Used to
	// cancel the search while requests are in flight.
	onFollowing func()
}

func (f *fakeAPI) record(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[endpoint]++
}

func (f *fakeAPI) count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeAPI) Following(ctx context.Context, user string) ([]github.User, error) {
	f.record("following")
	if f.onFollowing != nil {
		f.onFollowing()
	}
	return f.following, f.followingErr
}

func (f *fakeAPI) Followers(ctx context.Context, user string) ([]github.User, error) {
	f.record("followers")
	return f.followers, f.followersErr
}

func (f *fakeAPI) Orgs(ctx context.Context, user string) ([]github.Org, error) {
	f.record("orgs")
	return f.orgs, f.orgsErr
}

func (f *fakeAPI) OrgMembers(ctx context.Context, org string) ([]github.User, error) {
	f.record("members:" + org)
	return f.members[org], nil
}

func (f *fakeAPI) Repos(ctx context.Context, user string) ([]github.Repo, error) {
	f.record("repos")
	return f.repos, f.reposErr
}

func (f *fakeAPI) Contributors(ctx context.Context, owner, repo string) ([]github.User, error) {
	f.record("contributors:" + owner + "/" + repo)
	return f.contrib[owner+"/"+repo], nil
}

func (f *fakeAPI) Collaborators(ctx context.Context, owner, repo string) ([]github.User, error) {
	f.record("collaborators:" + owner + "/" + repo)
	return f.collab[owner+"/"+repo], nil
}

func user(login string) github.User {
	return github.User{Login: login, HTMLURL: "https://github.com/" + login}
}

func repo(owner, name string, fork bool) github.Repo {
	return github.Repo{
		Name:     name,
		FullName: owner + "/" + name,
		Fork:     fork,
		Owner:    user(owner),
	}
}

func TestSearch_AllCategories(t *testing.T) {
	api := &fakeAPI{
		following: []github.User{user("alice")},
		followers: []github.User{user("bob"), user("alice")},
		orgs:      []github.Org{{Login: "acme"}},
		members: map[string][]github.User{
			"acme": {user("carol"), user("octocat")},
		},
		repos: []github.Repo{repo("octocat", "widget", false)},
		contrib: map[string][]github.User{
			"octocat/widget": {user("dave")},
		},
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	byHandle := make(map[string]*Account)
	for _, a := range res.Accounts {
		byHandle[a.Handle] = a
	}

	// The queried account never appears in its own results.
	if _, ok := byHandle["octocat"]; ok {
		t.Error("queried account present in results")
	}

	// alice was discovered as followed and follower; both kinds merge.
	alice := byHandle["alice"]
	if alice == nil {
		t.Fatal("alice missing")
	}
	w := DefaultWeights()
	if got := alice.Score(w); got != w[KindFollows]+w[KindFollower] {
		t.Errorf("alice score = %v, want %v", got, w[KindFollows]+w[KindFollower])
	}

	for _, h := range []string{"bob", "carol", "dave"} {
		if byHandle[h] == nil {
			t.Errorf("%s missing from results", h)
		}
	}
	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if res.ID == "" {
		t.Error("Result.ID is empty")
	}
}

func TestSearch_ZeroOrgsAndRepos(t *testing.T) {
	api := &fakeAPI{
		following: []github.User{user("alice")},
		followers: []github.User{user("bob")},
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("Total = %d, want 2", res.Total)
	}

	// Only the four outer requests; no secondary fan-out was issued.
	for endpoint, n := range api.calls {
		switch endpoint {
		case "following", "followers", "orgs", "repos":
			if n != 1 {
				t.Errorf("%s called %d times, want 1", endpoint, n)
			}
		default:
			t.Errorf("unexpected secondary request: %s", endpoint)
		}
	}
}

func TestSearch_ForkRoutesToCollaborators(t *testing.T) {
	api := &fakeAPI{
		repos: []github.Repo{
			repo("octocat", "forked", true),
			repo("octocat", "own1", false),
			repo("octocat", "own2", false),
		},
		collab: map[string][]github.User{
			"octocat/forked": {user("ann")},
		},
		contrib: map[string][]github.User{
			"octocat/own1": {user("ben")},
			"octocat/own2": {user("ann")},
		},
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if api.count("collaborators:octocat/forked") != 1 {
		t.Error("fork should hit the collaborators endpoint")
	}
	if api.count("contributors:octocat/own1") != 1 || api.count("contributors:octocat/own2") != 1 {
		t.Error("non-forks should hit the contributors endpoint")
	}
	if api.count("contributors:octocat/forked") != 0 {
		t.Error("fork must not hit the contributors endpoint")
	}

	// ann: collaborator on the fork plus contributor on own2.
	var ann *Account
	for _, a := range res.Accounts {
		if a.Handle == "ann" {
			ann = a
		}
	}
	if ann == nil {
		t.Fatal("ann missing")
	}
	w := DefaultWeights()
	if got := ann.Score(w); got != w[KindCollaborator]+w[KindContributor] {
		t.Errorf("ann score = %v, want %v", got, w[KindCollaborator]+w[KindContributor])
	}
}

func TestSearch_OuterFailureStillResolves(t *testing.T) {
	api := &fakeAPI{
		following: []github.User{user("alice")},
		orgsErr:   errors.New(errors.ErrCodeNotFound, "orgs lookup 404"),
		reposErr:  errors.New(errors.ErrCodeServer, "repos lookup 502"),
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() should degrade, got error: %v", err)
	}
	// Partial results from the surviving categories still render.
	if res.Total != 1 || res.Accounts[0].Handle != "alice" {
		t.Errorf("results = %+v, want alice only", res.Accounts)
	}
}

func TestSearch_AllCategoriesFail(t *testing.T) {
	boom := errors.New(errors.ErrCodeServer, "boom")
	api := &fakeAPI{followingErr: boom, followersErr: boom, orgsErr: boom, reposErr: boom}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Total != 0 || len(res.Accounts) != 0 {
		t.Errorf("expected empty result, got %+v", res.Accounts)
	}
}

func TestSearch_MultipleOrgsFanOut(t *testing.T) {
	api := &fakeAPI{
		orgs: []github.Org{{Login: "a"}, {Login: "b"}, {Login: "c"}},
		members: map[string][]github.User{
			"a": {user("m1")},
			"b": {user("m2"), user("m1")},
			"c": nil,
		},
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	for _, org := range []string{"a", "b", "c"} {
		if api.count("members:"+org) != 1 {
			t.Errorf("members:%s called %d times, want 1", org, api.count("members:"+org))
		}
	}
	// m1 appears in two orgs: colleague twice.
	var m1 *Account
	for _, a := range res.Accounts {
		if a.Handle == "m1" {
			m1 = a
		}
	}
	if m1 == nil {
		t.Fatal("m1 missing")
	}
	w := DefaultWeights()
	if got := m1.Score(w); got != 2*w[KindColleague] {
		t.Errorf("m1 score = %v, want %v", got, 2*w[KindColleague])
	}
}

func TestSearch_SupersededSearchDoesNotRender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{
		// Results arrive, but the search was cancelled mid-flight.
		onFollowing: cancel,
		following:   []github.User{user("alice")},
		followers:   []github.User{user("bob")},
	}
	s := NewSearcher(api, Options{})

	res, err := s.Search(ctx, "octocat")
	if err == nil {
		t.Fatal("superseded search should return an error")
	}
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Errorf("superseded search rendered a result: %+v", res)
	}
}

func TestSearch_MaxResultsCap(t *testing.T) {
	var followers []github.User
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		followers = append(followers, user(l))
	}
	api := &fakeAPI{followers: followers}
	s := NewSearcher(api, Options{MaxResults: 3})

	res, err := s.Search(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(res.Accounts) != 3 {
		t.Errorf("len(Accounts) = %d, want 3", len(res.Accounts))
	}
	if res.Total != 5 {
		t.Errorf("Total = %d, want 5", res.Total)
	}
}

func TestSearch_InvalidHandle(t *testing.T) {
	s := NewSearcher(&fakeAPI{}, Options{})
	_, err := s.Search(context.Background(), "../etc")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidLogin) {
		t.Errorf("err = %v, want INVALID_LOGIN", err)
	}
}

func TestSearch_SkipsRepoWithoutOwner(t *testing.T) {
	api := &fakeAPI{
		repos: []github.Repo{
			{Name: "orphan"}, // no owner login
			repo("octocat", "ok", false),
		},
		contrib: map[string][]github.User{"octocat/ok": {user("x")}},
	}
	s := NewSearcher(api, Options{})

	if _, err := s.Search(context.Background(), "octocat"); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if api.count("contributors:/orphan") != 0 && api.count("contributors:octocat/ok") != 1 {
		t.Error("ownerless repo should be skipped")
	}
	for endpoint := range api.calls {
		if endpoint == "contributors:/orphan" {
			t.Error("request issued for ownerless repo")
		}
	}
}
