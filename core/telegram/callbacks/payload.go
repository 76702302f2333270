package callbacks

import (
	"strconv"
	"strings"
)

// Sep separates fields inside a callback payload.
const Sep = "|"

// Join builds a payload from fields.
func Join(fields ...string) string {
	return strings.Join(fields, Sep)
}

// Split breaks a payload into fields. An empty payload yields ErrSyntax.
func Split(payload string) ([]string, error) {
	if payload == "" {
		return nil, strconv.ErrSyntax
	}
	return strings.Split(payload, Sep), nil
}
