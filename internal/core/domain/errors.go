package domain

import "errors"

var (
	// Validation: malformed or incomplete frame fields, recovered locally.
	ErrInvalidFrame = errors.New("invalid frame")

	// Not found.
	ErrRoomNotFound    = errors.New("room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")

	// Conflict: explicit create of an existing room id.
	ErrRoomExists = errors.New("room already exists")

	// Foreign key: a message referencing an absent room or sender.
	ErrForeignKey = errors.New("referenced room or user does not exist")

	// Membership lookup against a room the user never joined.
	ErrNotInRoom = errors.New("not a member of room")
)
