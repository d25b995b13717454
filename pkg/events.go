package wifiinfo

import "github.com/google/uuid"

// EventWifiInfoChanged is raised with a Snapshot payload whenever the
// observed connection differs from the last one emitted.
const EventWifiInfoChanged = "onWifiInfoChanged"

// A Change wraps an emitted event for delivery to remote clients
// (websocket, REST). Type carries the event name, Update the payload.
//
// Updates need to be json-marshalable types
type Change struct {
	ID     string `json:"id"`
	Error  string `json:"error"`
	Type   string `json:"type"`
	Update Update `json:"update"`
}

type Update any

func NewChange(event string, update Update) Change {
	return Change{
		ID:     uuid.NewString(),
		Type:   event,
		Update: update,
	}
}
