// Package auth builds the credential record sent as the first frame of every connection.
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Credentials identify the subscriber to the comet server.
type Credentials struct {
	UserID int64 // Assigned user; <= 0 lets the server pick an anonymous id
	RoomID int32 // Room to join

	raw []byte // Pre-built token, sent verbatim when set
}

// record is the wire shape of the auth frame.
type record struct {
	UserID int64 `json:"userId"`
	RoomID int32 `json:"roomId"`
}

// NewCredentials returns credentials for a user and room.
func NewCredentials(userID int64, roomID int32) *Credentials {
	return &Credentials{
		UserID: userID,
		RoomID: roomID,
	}
}

// LoadToken loads a pre-built token from a file. Surrounding whitespace is trimmed.
func LoadToken(path string) (*Credentials, error) {
	if path == "" {
		return nil, fmt.Errorf("token path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("token file %s is empty", path)
	}

	return &Credentials{raw: data}, nil
}

// Payload serializes the credentials into the auth frame.
func (c *Credentials) Payload() ([]byte, error) {
	if c.raw != nil {
		out := make([]byte, len(c.raw))
		copy(out, c.raw)
		return out, nil
	}

	data, err := json.Marshal(record{UserID: c.UserID, RoomID: c.RoomID})
	if err != nil {
		return nil, fmt.Errorf("marshal auth record: %w", err)
	}
	return data, nil
}

// Builder returns Payload as a function, built fresh for each connection.
func (c *Credentials) Builder() func() ([]byte, error) {
	return c.Payload
}
