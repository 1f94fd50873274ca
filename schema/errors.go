package schema

import "fmt"

// SchemaError reports a schema source that cannot be loaded. It is fatal to startup: no partial
// registry is ever returned alongside it.
type SchemaError struct {
	Source string
	Line   int // 0 when the problem is not tied to a line
	Field  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("invalid schema %s", e.Source)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
