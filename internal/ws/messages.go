package ws

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	TypeAuthenticate   = "authenticate"
	TypeGetMachineData = "get_machine_data"
	TypeGetToolData    = "get_tool_data"
	TypeGetAxisData    = "get_axis_data"
)

// Outbound message types.
const (
	TypeMachineData = "machine_data"
	TypeToolData    = "tool_data"
	TypeAxisData    = "axis_data"
	TypeError       = "error"
)

// inboundMessage is the decoded form of a client frame. Type is the tag;
// Token is only meaningful for authenticate messages.
type inboundMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// decodeInbound validates a raw client frame at the boundary. Unrecognized
// tags decode successfully so the caller can answer them with an error
// message instead of dropping the connection; malformed JSON and missing
// fields do not.
func decodeInbound(raw []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return inboundMessage{}, fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type == "" {
		return inboundMessage{}, fmt.Errorf("message without a type")
	}
	if msg.Type == TypeAuthenticate && msg.Token == "" {
		return inboundMessage{}, fmt.Errorf("authenticate without a token")
	}
	return msg, nil
}

// dataMessage is an outbound projection payload.
type dataMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// errorMessage is an outbound error reply. It never closes the connection.
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newError(message string) errorMessage {
	return errorMessage{Type: TypeError, Message: message}
}
