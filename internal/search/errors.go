package search

import (
	"fmt"
	"strings"
)

// ValidationError blocks a submit. Nothing is fetched and only the message
// is surfaced.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}
