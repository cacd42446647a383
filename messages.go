package main

// Role names a client can claim. Every slot except RoleOverlay holds at
// most one live connection; overlays are broadcast-only and any number
// may attach.
const (
	RoleController  = "controller"
	RoleWordGiver1  = "word_giver_1"
	RoleWordGiver2  = "word_giver_2"
	RoleWordGuesser = "word_guesser"
	RoleOverlay     = "overlay"
)

// roleOrder fixes the order of connected_clients in snapshots.
var roleOrder = []string{
	RoleController,
	RoleWordGiver1,
	RoleWordGiver2,
	RoleWordGuesser,
	RoleOverlay,
}

func validRole(role string) bool {
	for _, r := range roleOrder {
		if r == role {
			return true
		}
	}
	return false
}

// commandRoles is the static per-command whitelist, checked before any
// phase validation. Commands absent from this table ("connect",
// "get_state", "test_connection", "ping") are open to every bound
// client, overlays included.
var commandRoles = map[string][]string{
	"start_game":          {RoleController},
	"stop_game":           {RoleController},
	"reset_game":          {RoleController},
	"adjust_timer":        {RoleController},
	"mark_word_correct":   {RoleController},
	"mark_word_incorrect": {RoleController},
	"pass_word":           {RoleWordGiver1, RoleWordGiver2},
	"request_guess":       {RoleWordGuesser},
}

func roleAllowed(cmdType, role string) bool {
	allowed, restricted := commandRoles[cmdType]
	if !restricted {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Messages coming from clients
type ClientMessage struct {
	Type        string `json:"type"`                   // command name
	ClientType  string `json:"client_type,omitempty"`  // connect
	SessionUUID string `json:"session_uuid,omitempty"` // connect
	APIKey      string `json:"api_key,omitempty"`      // connect (controller only)
	Seconds     int    `json:"seconds,omitempty"`      // adjust_timer
}

// Stats are the running team score.
type Stats struct {
	Correct     int `json:"correct"`
	Incorrect   int `json:"incorrect"`
	TotalPoints int `json:"total_points"`
}

// SessionSnapshot is the full serialized session state sent on join and
// after every accepted mutation.
type SessionSnapshot struct {
	UUID             string   `json:"uuid"`
	State            string   `json:"state"`
	ConnectedClients []string `json:"connected_clients"`
	Timer            int      `json:"timer"`
	Stats            Stats    `json:"stats"`
	CurrentWord      *string  `json:"current_word"`
	PassCount        int      `json:"pass_count"`
}

// SessionStateMessage carries a full snapshot.
type SessionStateMessage struct {
	Type    string          `json:"type"` // "session_state"
	Session SessionSnapshot `json:"session"`
}

// TimerUpdateMessage is broadcast on every play-timer tick.
type TimerUpdateMessage struct {
	Type  string `json:"type"` // "timer_update"
	Timer int    `json:"timer"`
}

// CountdownMessage is broadcast while a guess countdown runs.
type CountdownMessage struct {
	Type    string `json:"type"` // "countdown"
	Seconds int    `json:"seconds"`
}

// TestResponseMessage answers a test_connection probe.
type TestResponseMessage struct {
	Type        string `json:"type"` // "test_response"
	Message     string `json:"message"`
	ClientType  string `json:"client_type"`
	SessionUUID string `json:"session_uuid"`
}

// PongMessage answers a ping.
type PongMessage struct {
	Type string `json:"type"` // "pong"
}

// ErrorMessage is sent only to the client whose command was rejected.
type ErrorMessage struct {
	Error string `json:"error"`
}
