package events

import (
	"fmt"
	"strings"
)

// Fetch failure kinds.
const (
	OpTransport = "transport"
	OpStatus    = "status"
	OpDecode    = "decode"
)

// FetchError describes why a listing fetch produced no data.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Op == OpStatus:
		return fmt.Sprintf("upstream %s: http %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
	}
	return "upstream " + e.Op
}

func (e *FetchError) Unwrap() error { return e.Err }

// Code is a stable identifier for logs, e.g. "UPSTREAM_STATUS".
func (e *FetchError) Code() string {
	return "UPSTREAM_" + strings.ToUpper(e.Op)
}
