package connections

import "strings"

// Reasons renders the human-readable relationship descriptions for an
// account, with the queried handle substituted into each template.
//
// Collapsing happens here, at render time, keyed by display template: a
// template that occurs more than once is replaced by the kind's plural
// phrase ("shared commit access" twice becomes "shared commit access to
// multiple repos"), and exact duplicates never repeat. Order follows the
// first appearance of each template in the discovery sequence.
func Reasons(a *Account, queried string) []string {
	display := make(map[string]string)
	var order []string

	for _, k := range a.Kinds {
		tmpl := k.Template()
		if _, seen := display[tmpl]; seen {
			display[tmpl] = k.PluralTemplate()
			continue
		}
		display[tmpl] = tmpl
		order = append(order, tmpl)
	}

	out := make([]string, 0, len(order))
	for _, tmpl := range order {
		out = append(out, strings.ReplaceAll(display[tmpl], userPlaceholder, queried))
	}
	return out
}

// Describe joins the account's reasons into a single display string.
func Describe(a *Account, queried string) string {
	return strings.Join(Reasons(a, queried), "; ")
}
