// Package constraint turns analyst input into validated, typed constraints.
//
// Each input is checked against the schema registry: the field must exist, the operator must
// belong to the field type's operator domain, and the literal must parse as the field type.
// Inputs missing a field or a value are "not yet specified" and are skipped without error.
package constraint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/datazip-inc/slicer/utils/typeutils"
	"github.com/hashicorp/go-multierror"
)

// FieldLookup resolves field names to descriptors; *schema.Registry implements it.
type FieldLookup interface {
	Lookup(name string) (types.FieldDescriptor, bool)
}

// Validate checks one constraint. It returns (nil, nil) for an inactive input.
func Validate(fieldName, operator, rawValue string, fields FieldLookup) (*types.Constraint, error) {
	input := types.ConstraintInput{Field: fieldName, Operator: operator, Value: rawValue}
	if !input.Active() {
		return nil, nil
	}

	name := strings.TrimSpace(fieldName)
	field, found := fields.Lookup(name)
	if !found {
		return nil, &ValidationError{Kind: ErrUnknownField, Field: name, Operator: operator, Value: rawValue}
	}

	op := types.ParseOperator(operator)
	if !op.AllowedFor(field.Type) {
		return nil, &ValidationError{
			Kind:     ErrOperatorMismatch,
			Field:    name,
			Operator: operator,
			Value:    rawValue,
			Reason:   fmt.Sprintf("%s fields accept %s", field.Type, joinOperators(types.Operators(field.Type))),
		}
	}

	value, err := typeutils.ReformatValue(field.Type, rawValue)
	if err != nil {
		return nil, &ValidationError{
			Kind:     ErrTypeCoercion,
			Field:    name,
			Operator: string(op),
			Value:    rawValue,
			Reason:   err.Error(),
		}
	}

	raw := rawValue
	if field.Type.IsNumeric() {
		raw = strings.TrimSpace(rawValue)
	}

	return &types.Constraint{Field: field, Operator: op, Value: value, Raw: raw}, nil
}

// Build validates every input in order. Valid constraints are returned in input order; rejected
// ones are aggregated into the returned error, which callers report without aborting the request.
// Repeated fields are all kept and end up ANDed together.
func Build(inputs []types.ConstraintInput, fields FieldLookup) (types.ConstraintSet, error) {
	var rejected *multierror.Error
	set := make(types.ConstraintSet, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for idx, input := range inputs {
		c, err := Validate(input.Field, input.Operator, input.Value, fields)
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return nil, err
			}
			logger.Warnf("skipping constraint[%d]: %s", idx, err)
			rejected = multierror.Append(rejected, err)
			continue
		}
		if c == nil {
			logger.Debugf("constraint[%d] is not fully specified, ignoring", idx)
			continue
		}

		if _, dup := seen[c.Field.Name]; dup {
			logger.Warnf("field %s is constrained more than once; all constraints on it apply", c.Field.Name)
		}
		seen[c.Field.Name] = struct{}{}
		set = append(set, *c)
	}

	return set, rejected.ErrorOrNil()
}

func joinOperators(ops []types.Operator) string {
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return strings.Join(names, ", ")
}
