package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error carries one message per invalid request field.
type Error struct {
	Fields map[string]string
}

// Error joins the field messages in field name order.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
