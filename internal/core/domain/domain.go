package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderUsername is assigned when a client registers without a display
// name. A later register carrying a real name replaces it.
const PlaceholderUsername = "User"

// User is the durable identity, keyed by a unique phone number.
type User struct {
	ID        string
	Phone     string
	Username  string
	CreatedAt time.Time
}

func NewUser(phone, username string) *User {
	if username == "" {
		username = PlaceholderUsername
	}
	return &User{
		ID:        uuid.NewString(),
		Phone:     phone,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// Room is a conversation context. A 1:1 room and a group room differ only in
// IsGroup/Name, not in membership mechanics.
type Room struct {
	ID        string
	OwnerID   string
	IsGroup   bool
	Name      string
	CreatedAt time.Time
}

// RoomMember is the durable fact that a user belongs to a room.
// (RoomID, UserID) is unique at the store level.
type RoomMember struct {
	RoomID   string
	UserID   string
	Username string
	Phone    string
	JoinedAt time.Time
}

// MessageType is a closed variant; frame input only becomes one through
// NormalizeMessageType.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageVideo    MessageType = "video"
	MessageDocument MessageType = "document"
	MessageAudio    MessageType = "audio"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageDocument, MessageAudio:
		return true
	}
	return false
}

// NormalizeMessageType resolves the declared type against the supplied media.
// Without a declared type the message is text, whatever media it carries.
// A declared type promotes to image when it says image or an image URL is
// attached; video, document and audio pass through; anything else is text.
func NormalizeMessageType(declared string, imageURL string) MessageType {
	if declared == "" {
		return MessageText
	}
	if declared == string(MessageImage) || imageURL != "" {
		return MessageImage
	}
	switch t := MessageType(declared); t {
	case MessageVideo, MessageDocument, MessageAudio:
		return t
	}
	return MessageText
}

// Message is immutable once stored, except for the read flag. Seq is
// store-assigned insertion order and breaks timestamp ties.
type Message struct {
	ID          string
	Seq         int64
	RoomID      string
	SenderID    string
	SenderName  string
	Body        string
	Media       string
	Type        MessageType
	Timestamp   time.Time
	ReadReceipt bool
}

// RoomPreview is the Room Directory list-view shape: the room, its members
// and the single most recent message.
type RoomPreview struct {
	Room        Room
	Members     []RoomMember
	LastMessage *Message
}

// Presence is transient per-user state, rebuilt empty on process restart.
type Presence struct {
	IsOnline     bool
	LastActiveAt time.Time
}

// Identity is what the registry holds per live connection after register.
type Identity struct {
	UserID   string
	Username string
}
