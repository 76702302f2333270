package dialog

import (
	"strconv"

	"cloud.google.com/go/civil"

	"github.com/m3rciful/eventbot/core/telegram/callbacks"
)

// Kind tags an Action.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindHelp
	KindEvents
	KindBrowse
	KindPage
	KindSearch
	KindCancel
	KindText
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindStart:   "start",
	KindHelp:    "help",
	KindEvents:  "events",
	KindBrowse:  "browse",
	KindPage:    "page",
	KindSearch:  "search",
	KindCancel:  "cancel",
	KindText:    "text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Action is one decoded user input. Date and Offset are set for paging and
// search buttons; Text carries command arguments or free text.
type Action struct {
	Kind   Kind
	UserID int64
	Date   civil.Date
	Offset int
	Text   string
	// Typed is the whole message when the command was recognized from a bare
	// word in plain text. A pending search takes it as the query instead.
	Typed string
}

// Callback unique keys.
const (
	CallbackPage   = "page"
	CallbackSearch = "search"
	CallbackCancel = "cancel"
)

// PagePayload encodes the target of a paging button.
func PagePayload(day civil.Date, offset int) string {
	return callbacks.Join(day.String(), strconv.Itoa(offset))
}

// DecodeCallback turns a button press into an Action. Anything malformed,
// including buttons from older layouts, becomes KindUnknown.
func DecodeCallback(userID int64, unique, payload string) Action {
	a := Action{UserID: userID}
	switch unique {
	case CallbackPage:
		parts, err := callbacks.Split(payload)
		if err != nil || len(parts) != 2 {
			return a
		}
		day, err := civil.ParseDate(parts[0])
		if err != nil {
			return a
		}
		offset, err := strconv.Atoi(parts[1])
		if err != nil {
			return a
		}
		a.Kind, a.Date, a.Offset = KindPage, day, offset
	case CallbackSearch:
		if payload != "" {
			day, err := civil.ParseDate(payload)
			if err != nil {
				return a
			}
			a.Date = day
		}
		a.Kind = KindSearch
	case CallbackCancel:
		a.Kind = KindCancel
	}
	return a
}
