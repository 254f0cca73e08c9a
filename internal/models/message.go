package models

import (
	"encoding/json"
	"fmt"
)

// Message is a single immutable entry of a conversation.
// The JSON field names are the stored and wire format and must not change.
type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewMessage builds a message with the given id
func NewMessage(id, sender, subject, body string) *Message {
	return &Message{
		ID:      id,
		Sender:  sender,
		Subject: subject,
		Body:    body,
	}
}

// Encode serializes the message into the column value format
func (m *Message) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	return string(data), nil
}

// DecodeMessage parses a column value back into a Message
func DecodeMessage(value string) (*Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(value), &m); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return &m, nil
}
