package connections

import (
	"strings"
	"testing"
)

func dotResult() *Result {
	set := NewSet("octocat")
	set.Add("alice", "https://github.com/alice", KindFollows)
	set.Add("alice", "https://github.com/alice", KindFollower)
	set.Add("bob", "https://github.com/bob", KindContributor)
	w := DefaultWeights()
	return &Result{
		Handle:   "octocat",
		Accounts: set.Top(w, 0),
		Total:    set.Len(),
		Weights:  w,
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(dotResult())

	for _, want := range []string{
		"graph connections {",
		"layout=neato",
		`"octocat" [fillcolor=lightblue`,
		`"octocat" -- "alice"`,
		`"octocat" -- "bob"`,
		`href="https://github.com/alice"`,
		"score: 60", // follows + follower
		"score: 42",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\n%s", want, dot)
		}
	}

	// Undirected graph: no digraph, no arrows.
	if strings.Contains(dot, "digraph") || strings.Contains(dot, "->") {
		t.Error("DOT output should be an undirected graph")
	}
}

func TestToDOT_EdgeLabelsCarryReasons(t *testing.T) {
	dot := ToDOT(dotResult())
	if !strings.Contains(dot, "octocat follows this user") {
		t.Errorf("edge label missing follows reason:\n%s", dot)
	}
	if !strings.Contains(dot, "this user follows octocat") {
		t.Errorf("edge label missing follower reason:\n%s", dot)
	}
}

func TestToDOT_EmptyResult(t *testing.T) {
	res := &Result{Handle: "octocat", Weights: DefaultWeights()}
	dot := ToDOT(res)
	if !strings.Contains(dot, "graph connections {") || !strings.Contains(dot, `"octocat"`) {
		t.Errorf("empty result should still render the center node:\n%s", dot)
	}
}

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{42, "42"},
		{0.1, "0.1"},
		{35.5, "35.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatScore(tt.in); got != tt.want {
			t.Errorf("formatScore(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(dotResult()))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output does not look like SVG")
	}
}
