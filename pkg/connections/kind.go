// Package connections implements the relevance aggregation engine: it
// discovers accounts related to a queried GitHub account across several
// relationship categories, merges repeated discoveries of the same
// account, scores each by a configurable weight table, and returns a
// ranked, capped list.
package connections

// Placeholder substituted with the queried account's handle when a
// relationship template is rendered.
const userPlaceholder = "{user}"

// Kind identifies how one account relates to the queried account.
type Kind int

// The canonical relationship kinds, in descending default weight order.
const (
	// KindCollaborator: shared commit access to a non-fork repo. If people
	// share commit access, they almost certainly know each other.
	KindCollaborator Kind = iota

	// KindFollows: the queried account follows this account. A signal of
	// interest in someone's work, not necessarily a mutual relationship.
	KindFollows

	// KindContributor: landed commits in a repo the queried account
	// maintains. Enough commits make mutual recognition likely.
	KindContributor

	// KindColleague: co-member of an organization. Very likely mutual
	// acquaintance for small orgs, much less for large ones.
	KindColleague

	// KindFollower: this account follows the queried account. Could also
	// be someone random who is interested in the queried account's work.
	KindFollower
)

// kindNames are stable identifiers used in logs, DOT output, and JSON.
var kindNames = map[Kind]string{
	KindCollaborator: "collaborator",
	KindFollows:      "follows",
	KindContributor:  "contributor",
	KindColleague:    "colleague",
	KindFollower:     "follower",
}

// kindTemplates are the human-readable reasons shown next to a result.
var kindTemplates = map[Kind]string{
	KindCollaborator: "shared commit access",
	KindFollows:      userPlaceholder + " follows this user",
	KindContributor:  "this user contributed to a repo " + userPlaceholder + " maintains",
	KindColleague:    "in the same organization",
	KindFollower:     "this user follows " + userPlaceholder,
}

// kindPluralTemplates replace a reason that occurs more than once for the
// same account, e.g. a collaborator on several shared repos.
var kindPluralTemplates = map[Kind]string{
	KindCollaborator: "shared commit access to multiple repos",
	KindContributor:  "this user contributed to repos " + userPlaceholder + " maintains",
	KindColleague:    "in the same organizations",
}

// String returns the kind's stable identifier, or "unknown".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Template returns the display template for a single occurrence.
func (k Kind) Template() string {
	return kindTemplates[k]
}

// PluralTemplate returns the display template for repeated occurrences.
// Kinds without a plural phrase fall back to the singular template.
func (k Kind) PluralTemplate() string {
	if t, ok := kindPluralTemplates[k]; ok {
		return t
	}
	return k.Template()
}

// Weights maps relationship kinds to relevance weights.
// Kinds missing from the table contribute 0, never an error.
type Weights map[Kind]float64

// DefaultWeights returns the built-in weight table.
func DefaultWeights() Weights {
	return Weights{
		KindCollaborator: 100,
		KindFollows:      50,
		KindContributor:  42,
		KindColleague:    35,
		KindFollower:     10,
	}
}
