package discovery

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/arthur-debert/keyfactory/pkg/errors"
)

// Reason classifies why a marker was rejected.
type Reason string

const (
	ReasonMissingBase       Reason = "missing-base"
	ReasonUnresolvedKeyType Reason = "unresolved-key-type"
	ReasonMissingKey        Reason = "missing-key"
	ReasonInvalidKey        Reason = "invalid-key"
	ReasonGeneric           Reason = "generic-type"
	ReasonNotAssignable     Reason = "not-assignable"
)

// Diagnostic describes one rejected marker.
type Diagnostic struct {
	Pos      token.Position
	Package  string
	TypeName string
	Reason   Reason
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Pos, d.TypeName, d.Reason, d.Message)
}

// Policy decides what happens to rejected markers.
type Policy string

const (
	// PolicySkip drops rejected markers, logging them at debug level.
	PolicySkip Policy = "skip"
	// PolicyWarn drops rejected markers with a warning each.
	PolicyWarn Policy = "warn"
	// PolicyError makes Run return an error once the whole scan is done.
	PolicyError Policy = "error"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySkip, PolicyWarn, PolicyError:
		return p, nil
	case "":
		return PolicySkip, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown invalid-candidate policy %q (want skip, warn or error)", s)
}

func diagnosticsError(diags []Diagnostic) error {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return errors.Newf(errors.ErrCandidateInvalid, "%d invalid registration marker(s):\n- %s", len(diags), strings.Join(lines, "\n- ")).
		WithDetail("diagnostics", diags)
}
