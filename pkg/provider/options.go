package provider

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/selection"
)

// Options configures one render call.
type Options struct {
	// Primary and Fallback override the hardware-variant tokens from the
	// settings. Empty values keep the configured tokens.
	Primary  string
	Fallback string

	// Selection lists the requested sub-configuration names. Switch nodes
	// are active only when one of these names matches.
	Selection []string

	// Force bypasses cached artifacts and rewrites them.
	Force bool

	// Logger overrides the provider's logger for this call.
	Logger *log.Logger

	validated bool
}

// ParseSelection splits a delimited selection string such as "BIT|HSI".
func ParseSelection(s string) []string {
	return selection.Split(s)
}

// ValidateAndSetDefaults normalizes the selection and checks the variant
// tokens. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	sel := o.Selection[:0:0]
	for _, s := range o.Selection {
		if s = strings.TrimSpace(s); s != "" {
			sel = append(sel, s)
		}
	}
	o.Selection = sel

	for _, tok := range []string{o.Primary, o.Fallback} {
		if tok == "" {
			continue
		}
		if err := errors.ValidatePathName(tok); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "variant token %q", tok)
		}
	}
	o.validated = true
	return nil
}
