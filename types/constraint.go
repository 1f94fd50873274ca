package types

import (
	"fmt"
	"strings"

	"github.com/mitchellh/hashstructure"
)

// ConstraintInput is a constraint as typed by the analyst, before validation.
type ConstraintInput struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Active reports whether both field and value were specified. Inactive inputs are
// "not yet specified" rather than invalid.
func (c ConstraintInput) Active() bool {
	return strings.TrimSpace(c.Field) != "" && c.Value != ""
}

// Constraint is a validated field/operator/literal triple. Value holds the literal parsed to
// the field type: int64, float64 or string.
type Constraint struct {
	Field    FieldDescriptor
	Operator Operator
	Value    any
	// Raw is the literal as it was entered, used when rendering the constraint back to text.
	Raw string
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.Field.Name, c.Operator, c.Raw)
}

// ConstraintSet is ordered; evaluation short-circuits in this order.
type ConstraintSet []Constraint

// Describe renders one "<field> <operator> <value>" line per constraint.
func (s ConstraintSet) Describe() string {
	var sb strings.Builder
	for _, c := range s {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Fields returns the distinct field names referenced by the set, in first-seen order.
func (s ConstraintSet) Fields() []string {
	seen := make(map[string]struct{}, len(s))
	names := make([]string, 0, len(s))
	for _, c := range s {
		if _, ok := seen[c.Field.Name]; ok {
			continue
		}
		seen[c.Field.Name] = struct{}{}
		names = append(names, c.Field.Name)
	}
	return names
}

// Fingerprint is a stable hash of the set, used to correlate logs and outputs of identical requests.
func (s ConstraintSet) Fingerprint() (string, error) {
	type entry struct {
		Field    string
		Type     string
		Operator string
		Raw      string
	}
	entries := make([]entry, 0, len(s))
	for _, c := range s {
		entries = append(entries, entry{c.Field.Name, string(c.Field.Type), string(c.Operator), c.Raw})
	}
	hash, err := hashstructure.Hash(entries, nil)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint constraints: %s", err)
	}
	return fmt.Sprintf("%016x", hash), nil
}
