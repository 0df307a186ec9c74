package ws

import "encoding/json"

// SignalKind names what a signaling payload carries. "signal" is the
// compound form used by clients that wrap description and candidate in a
// single event union; the relay treats all four identically.
type SignalKind string

const (
	KindOffer     SignalKind = "offer"
	KindAnswer    SignalKind = "answer"
	KindCandidate SignalKind = "candidate"
	KindSignal    SignalKind = "signal"
)

func (k SignalKind) Valid() bool {
	switch k {
	case KindOffer, KindAnswer, KindCandidate, KindSignal:
		return true
	}
	return false
}

// Message is every frame exchanged on the socket, in both directions.
// Payload is opaque: the relay forwards its bytes untouched and never looks
// inside a session description or candidate.
type Message struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	To      string          `json:"to,omitempty"`
	From    string          `json:"from,omitempty"`
	Kind    SignalKind      `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Body    string          `json:"body,omitempty"`
	Members []string        `json:"members,omitempty"`
}

// NewMemberList is the join reply: the ids present before the join, plus the
// joiner's own server-assigned id in To so the client learns its identity.
func NewMemberList(roomKey, selfID string, members []string) *Message {
	return &Message{
		Type:    MemberList,
		Room:    roomKey,
		To:      selfID,
		Members: members,
	}
}

func NewMemberJoined(roomKey, connID string) *Message {
	return &Message{
		Type: MemberJoined,
		Room: roomKey,
		From: connID,
	}
}

func NewMemberLeft(roomKey, connID string) *Message {
	return &Message{
		Type: MemberLeft,
		Room: roomKey,
		From: connID,
	}
}

func NewChatMessage(roomKey, from, body string) *Message {
	return &Message{
		Type: ChatEvent,
		Room: roomKey,
		From: from,
		Body: body,
	}
}

func NewErrorMessage(reason string) *Message {
	return &Message{
		Type: ErrorEvent,
		Body: reason,
	}
}
