// Package fingerprint derives stable cache keys from configuration nodes.
//
// A node fingerprint starts from a fixed seed and adds, for every visually
// relevant field, the field hash multiplied by a fixed constant. The field
// hash is xxhash64 of "name=value" and is zero for unset fields. Because
// the combination is a plain (wrapping) sum, accumulation order never
// matters; because the field name is part of the hashed text, moving a
// value from one field to another still changes the result.
//
// Fingerprints are not cryptographic. Two different configurations can in
// principle collide; use [config.Equal] wherever correctness depends on
// equality and keep fingerprints for cache keys only.
package fingerprint

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/selection"
)

const (
	// Seed is the starting value of every fingerprint.
	Seed uint64 = 17

	// Multiplier scales each field hash before it is added.
	Multiplier uint64 = 31
)

// Of returns the fingerprint of n's own fields, ignoring its children.
func Of(n *config.Node) uint64 {
	h := Seed
	for _, f := range config.Fields {
		h += field(f.Name, f.Get(n)) * Multiplier
	}
	return h
}

// Composite returns Of(n) plus the fingerprint of every node anywhere in
// n's subtree that is active for requested.
func Composite(n *config.Node, requested []string) uint64 {
	h := Of(n)
	n.Walk(func(d, _ *config.Node) bool {
		if selection.IsActive(d, requested) {
			h += Of(d)
		}
		return true
	})
	return h
}

// Salt folds arbitrary render parameters into a value that can be added
// to a fingerprint. The same parts in the same order yield the same salt.
func Salt(parts ...string) uint64 {
	h := Seed
	for i, p := range parts {
		h += field(strconv.Itoa(i), p) * Multiplier
	}
	return h
}

// Key renders the cache key "{module}-{node}-{fingerprint}".
func Key(module, node string, fp uint64) string {
	return module + "-" + node + "-" + strconv.FormatUint(fp, 10)
}

func field(name, value string) uint64 {
	if value == "" {
		return 0
	}
	d := xxhash.New()
	_, _ = d.WriteString(name)
	_, _ = d.WriteString("=")
	_, _ = d.WriteString(value)
	return d.Sum64()
}
