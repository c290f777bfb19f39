// Package selection decides which configuration nodes are active.
//
// A node is active when it is static (not a switch) and its resolved
// enabled flag is true, or when it is a switch whose name matches one of
// the requested selection names. Matching is a case-insensitive substring
// test in either direction, so "BIT" selects "BIT-Page1" and
// "F-16C-BIT-Overlay" selects "BIT".
//
// The predicate is evaluated independently at every depth; callers that
// walk a tree descend into a node's children only after the node itself
// is active.
package selection

import (
	"strings"

	"github.com/matzehuels/mfdcache/pkg/config"
)

// Separators are the characters accepted between names by [Split].
const Separators = "|,;"

// IsActive reports whether n is rendered for the requested names.
// Empty entries in requested never match anything.
func IsActive(n *config.Node, requested []string) bool {
	if !n.IsSwitch() {
		return n.IsEnabled()
	}
	return Matches(n.Name, requested)
}

// Matches reports whether name contains, or is contained by, any non-empty
// entry of requested, ignoring case.
func Matches(name string, requested []string) bool {
	lname := strings.ToLower(name)
	if lname == "" {
		return false
	}
	for _, r := range requested {
		lr := strings.ToLower(strings.TrimSpace(r))
		if lr == "" {
			continue
		}
		if strings.Contains(lname, lr) || strings.Contains(lr, lname) {
			return true
		}
	}
	return false
}

// ActiveChildren returns n's active children in list order.
func ActiveChildren(n *config.Node, requested []string) []*config.Node {
	var out []*config.Node
	for _, c := range n.Children {
		if IsActive(c, requested) {
			out = append(out, c)
		}
	}
	return out
}

// Split turns a delimited selection string into names, dropping blanks.
func Split(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(Separators, r)
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
