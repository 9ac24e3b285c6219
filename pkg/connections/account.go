package connections

import (
	"sort"
	"sync"
)

// Account is one distinct related account together with every relationship
// discovered for it. The kind sequence is append-only and preserves
// duplicates: being a collaborator on two shared repos is stronger
// evidence than on one, and the score reflects that.
type Account struct {
	// Handle is the account's unique login, the sole identity key.
	// Comparison is exact and case-sensitive.
	Handle string

	// ProfileURL is the account's profile page.
	ProfileURL string

	// Kinds records one entry per discovery event, in arrival order.
	// Never empty: an account only exists here because at least one
	// relationship was found.
	Kinds []Kind
}

// Equal reports whether both accounts refer to the same handle.
func (a *Account) Equal(other *Account) bool {
	return other != nil && a.Handle == other.Handle
}

// AddKind appends one more discovery of a relationship.
func (a *Account) AddKind(kind Kind) {
	a.Kinds = append(a.Kinds, kind)
}

// Score sums the weight of every kind occurrence. It is recomputed on
// demand since kinds can be appended after creation; unknown kinds
// contribute 0.
func (a *Account) Score(w Weights) float64 {
	var score float64
	for _, k := range a.Kinds {
		score += w[k]
	}
	return score
}

// Set is a deduplicating, mergeable collection of Accounts, keyed by
// handle and excluding the queried account itself. One Set serves exactly
// one search; methods are safe to call from concurrent category
// completions, and the final merged state is the same for any arrival
// order of the same discoveries.
type Set struct {
	mu       sync.Mutex
	exclude  string
	accounts []*Account
}

// NewSet creates an empty Set. The excluded handle (the queried account)
// is never added to its own results.
func NewSet(exclude string) *Set {
	return &Set{exclude: exclude}
}

// Add records one relationship discovery. Adding the excluded handle or an
// empty handle is a no-op. If the handle is already present the kind is
// appended to the existing entry (merge, not replace); otherwise a new
// entry is inserted.
//
// The account count is bounded by one account's social graph, so the
// linear scan is fine.
func (s *Set) Add(handle, profileURL string, kind Kind) {
	if handle == "" || handle == s.exclude {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.Handle == handle {
			a.AddKind(kind)
			return
		}
	}
	s.accounts = append(s.accounts, &Account{
		Handle:     handle,
		ProfileURL: profileURL,
		Kinds:      []Kind{kind},
	})
}

// Remove deletes all entries matching the handle.
func (s *Set) Remove(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.Handle != handle {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
}

// Len returns the number of distinct accounts.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

// Sorted returns the accounts in descending score order. Ties are broken
// by handle, ascending, so output is deterministic.
func (s *Set) Sorted(w Weights) []*Account {
	s.mu.Lock()
	out := make([]*Account, len(s.accounts))
	copy(out, s.accounts)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Score(w), out[j].Score(w)
		if si != sj {
			return si > sj
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// Top returns at most limit accounts from the sorted order. A limit <= 0
// returns everything.
func (s *Set) Top(w Weights, limit int) []*Account {
	out := s.Sorted(w)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
