package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeState   = "STATE"
	TypeAct     = "ACT"
	TypeAck     = "ACK"
)

// Movement modes.
const (
	ModeStep  = "STEP"
	ModeTrack = "TRACK"
)

// Instant types carried by ACT.
const (
	InstMove     = "MOVE"
	InstInteract = "INTERACT"
	InstSetMode  = "SET_MODE"
	InstPos      = "POS"
	InstReset    = "RESET"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

func KnownMode(mode string) bool {
	return mode == ModeStep || mode == ModeTrack
}
