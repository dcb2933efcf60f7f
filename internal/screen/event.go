package screen

import (
	"fmt"
	"strings"
)

// EventKind tags the variant carried by an Event.
type EventKind uint8

const (
	// EventChangeSource asks the scene to navigate to Event.Source.
	EventChangeSource EventKind = iota + 1
	// EventSendInputTo asks the scene to submit the content of the elements
	// named in Event.SourceIDs to Event.Endpoint.
	EventSendInputTo
)

func (k EventKind) String() string {
	switch k {
	case EventChangeSource:
		return "change_source"
	case EventSendInputTo:
		return "send_input_to"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is raised by element reactions and consumed by Scene.HandleEvent.
type Event struct {
	Kind EventKind

	// ChangeSource
	Source string

	// SendInputTo
	SourceIDs []string
	Endpoint  string
	Method    string
}

// ChangeSource builds a navigation event.
func ChangeSource(source string) Event {
	return Event{Kind: EventChangeSource, Source: source}
}

// SendInputTo builds a form submission event.
func SendInputTo(sourceIDs []string, endpoint, method string) Event {
	ids := append([]string(nil), sourceIDs...)
	return Event{Kind: EventSendInputTo, SourceIDs: ids, Endpoint: endpoint, Method: method}
}

func (e Event) String() string {
	switch e.Kind {
	case EventChangeSource:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Source)
	case EventSendInputTo:
		return fmt.Sprintf("%s(%s %s <- %s)", e.Kind, strings.ToUpper(e.Method), e.Endpoint, strings.Join(e.SourceIDs, ","))
	default:
		return e.Kind.String()
	}
}
