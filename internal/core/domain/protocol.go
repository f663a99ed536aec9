package domain

import "time"

// Inbound frame types.
const (
	FrameRegister  = "register"
	FrameJoinRoom  = "join_room"
	FrameLeaveRoom = "leave_room"
	FrameMessage   = "message"
)

// Outbound frame types.
const (
	FrameRoomEntered = "room_entered"
	FrameRoomJoin    = "room_join"
	FrameRoomLeft    = "room_left"
	FrameChatHistory = "chat_history"
	FrameInfo        = "info"
)

// Frame is the single inbound envelope. Which fields matter depends on Type;
// the dispatcher validates per frame type.
type Frame struct {
	Type        string     `json:"type"`
	UserName    string     `json:"userName,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	RoomID      string     `json:"roomId,omitempty"`
	Text        string     `json:"text,omitempty"`
	MessageType string     `json:"messageType,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Media       string     `json:"media,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// RoomEvent answers register/join/leave to the acting connection.
type RoomEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

// Info carries occupant notifications and sender-local error replies.
type Info struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RoomID  string `json:"roomId,omitempty"`
}

// HistoryEntry is one replayed message inside a chat_history frame.
type HistoryEntry struct {
	Username    string      `json:"username"`
	Text        string      `json:"text"`
	Timestamp   time.Time   `json:"timestamp"`
	MessageType MessageType `json:"messageType"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Media       string      `json:"media,omitempty"`
}

// ChatHistory replays a room's messages to a joining connection.
type ChatHistory struct {
	Type     string         `json:"type"`
	RoomID   string         `json:"roomId"`
	Messages []HistoryEntry `json:"messages"`
}

// ChatBroadcast is the payload fanned out to every live connection in a room,
// the sender included.
type ChatBroadcast struct {
	Type        string      `json:"type"`
	RoomID      string      `json:"roomId"`
	Username    string      `json:"username"`
	Text        string      `json:"text"`
	Timestamp   time.Time   `json:"timestamp"`
	MessageType MessageType `json:"messageType"`
	Media       string      `json:"media,omitempty"`
}

// MessagePayload travels through the per-room queue between frame acceptance
// and durable append. ConnID lets the persistence side address a failure
// reply to the originating connection.
type MessagePayload struct {
	ConnID    string      `json:"conn_id"`
	RoomID    string      `json:"room_id"`
	SenderID  string      `json:"sender_id"`
	Username  string      `json:"username"`
	Body      string      `json:"body"`
	Media     string      `json:"media,omitempty"`
	Type      MessageType `json:"message_type"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewHistoryEntry(m Message) HistoryEntry {
	e := HistoryEntry{
		Username:    m.SenderName,
		Text:        m.Body,
		Timestamp:   m.Timestamp,
		MessageType: m.Type,
		Media:       m.Media,
	}
	if m.Type == MessageImage {
		e.ImageURL = m.Media
	}
	return e
}
