package types

import "strings"

type Operator string

const (
	GreaterThan    Operator = "greater_than"
	LessThan       Operator = "less_than"
	EqualTo        Operator = "equal_to"
	Contains       Operator = "contains"
	DoesNotContain Operator = "does_not_contain"
)

var (
	NumericOperators = []Operator{GreaterThan, LessThan, EqualTo}
	StringOperators  = []Operator{Contains, DoesNotContain}
)

// ParseOperator normalises "does not contain" style labels into their Operator form.
// Unknown spellings are returned as-is and rejected later by AllowedFor.
func ParseOperator(raw string) Operator {
	normalized := strings.Join(strings.Fields(strings.ToLower(raw)), "_")
	return Operator(normalized)
}

// Operators returns the operator domain of a data type.
func Operators(d DataType) []Operator {
	switch {
	case d.IsNumeric():
		return NumericOperators
	case d == String:
		return StringOperators
	}
	return nil
}

// Valid reports whether o is one of the known operators, whatever the field type.
func (o Operator) Valid() bool {
	return o.AllowedFor(Int) || o.AllowedFor(String)
}

// AllowedFor reports whether the operator may be applied to a field of the given type.
func (o Operator) AllowedFor(d DataType) bool {
	for _, allowed := range Operators(d) {
		if o == allowed {
			return true
		}
	}
	return false
}

func (o Operator) String() string {
	return string(o)
}
