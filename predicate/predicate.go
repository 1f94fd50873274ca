// Package predicate compiles a validated constraint set into a row test.
//
// Every constraint becomes one cell test; the tests are ANDed and short-circuit in set order.
// Cells are coerced to the field's declared type at test time, and a cell that does not coerce
// simply fails the test. Nothing here returns an error once compiled.
package predicate

import (
	"strings"

	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/datazip-inc/slicer/utils/typeutils"
)

// cellTest decides one constraint for a single cell. present is false when the dataset has no
// such column or the row is too short to hold it.
type cellTest func(cell string, present bool) bool

type clause struct {
	field string
	test  cellTest
}

// Predicate is immutable after Compile and safe to share between goroutines.
type Predicate struct {
	clauses     []clause
	constraints types.ConstraintSet
}

// RowMatcher tests raw rows of a dataset whose column layout was fixed by Bind.
type RowMatcher func(row types.Row) bool

// Compile builds the predicate for a constraint set. An empty set accepts every row.
func Compile(set types.ConstraintSet) *Predicate {
	p := &Predicate{
		clauses:     make([]clause, 0, len(set)),
		constraints: set,
	}

	for idx, c := range set {
		if c.Field.Name == "" {
			logger.Debugf("[Compile] constraint[%d] has no field, ignoring", idx)
			continue
		}
		test := compileTest(c)
		if test == nil {
			// Build never produces these; a hand assembled set could
			logger.Warnf("[Compile] constraint [%s] has no test for %s fields, ignoring", c, c.Field.Type)
			continue
		}
		p.clauses = append(p.clauses, clause{field: c.Field.Name, test: test})
	}

	logger.Debugf("[Compile] compiled %d of %d constraints", len(p.clauses), len(set))
	return p
}

// Constraints returns the set the predicate was compiled from.
func (p *Predicate) Constraints() types.ConstraintSet {
	return p.constraints
}

// Fields lists the columns the predicate reads, in evaluation order.
func (p *Predicate) Fields() []string {
	names := make([]string, 0, len(p.clauses))
	for _, cl := range p.clauses {
		names = append(names, cl.field)
	}
	return names
}

// Match evaluates the predicate against one record.
func (p *Predicate) Match(record types.Record) bool {
	for _, cl := range p.clauses {
		cell, present := record.Get(cl.field)
		if !cl.test(cell, present) {
			return false
		}
	}
	return true
}

// Bind resolves column positions once so rows can be tested without name lookups.
func (p *Predicate) Bind(columns []string) RowMatcher {
	header := types.NewHeader(columns)

	type bound struct {
		idx  int
		test cellTest
	}
	tests := make([]bound, 0, len(p.clauses))
	for _, cl := range p.clauses {
		idx, ok := header.Index(cl.field)
		if !ok {
			logger.Warnf("[Bind] column %s is not in the dataset, constraints on it see an absent value", cl.field)
			idx = -1
		}
		tests = append(tests, bound{idx: idx, test: cl.test})
	}

	return func(row types.Row) bool {
		for _, b := range tests {
			var cell string
			present := b.idx >= 0 && b.idx < len(row)
			if present {
				cell = row[b.idx]
			}
			if !b.test(cell, present) {
				return false
			}
		}
		return true
	}
}

func compileTest(c types.Constraint) cellTest {
	switch c.Field.Type {
	case types.Int:
		literal, ok := c.Value.(int64)
		if !ok {
			return nil
		}
		return numericTest(c.Operator, literal, typeutils.CoerceInt64)
	case types.Float:
		literal, ok := c.Value.(float64)
		if !ok {
			return nil
		}
		return numericTest(c.Operator, literal, typeutils.CoerceFloat64)
	case types.String:
		literal, ok := c.Value.(string)
		if !ok {
			return nil
		}
		return stringTest(c.Operator, literal)
	}
	return nil
}

func numericTest[T typeutils.Number](op types.Operator, literal T, coerce func(string) (T, bool)) cellTest {
	var want func(cmp int) bool
	switch op {
	case types.GreaterThan:
		want = func(cmp int) bool { return cmp > 0 }
	case types.LessThan:
		want = func(cmp int) bool { return cmp < 0 }
	case types.EqualTo:
		want = func(cmp int) bool { return cmp == 0 }
	default:
		return nil
	}

	return func(cell string, present bool) bool {
		if !present {
			return false
		}
		value, ok := coerce(cell)
		if !ok {
			return false
		}
		cmp, ok := typeutils.Compare(value, literal)
		return ok && want(cmp)
	}
}

func stringTest(op types.Operator, literal string) cellTest {
	contains := func(cell string, present bool) bool {
		return present && strings.Contains(cell, literal)
	}

	switch op {
	case types.Contains:
		return contains
	case types.DoesNotContain:
		return func(cell string, present bool) bool {
			return !contains(cell, present)
		}
	}
	return nil
}
