package models

import "time"

// QueueItem represents a queue in a listing
type QueueItem struct {
	Name string `json:"name" yaml:"name"`
}

// QueueProperties represents the properties of a single queue
type QueueProperties struct {
	Name                     string            `json:"name" yaml:"name"`
	ApproximateMessagesCount int32             `json:"approximate_messages_count" yaml:"approximate_messages_count"`
	Metadata                 map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Message represents a queue message. PopReceipt is only set for received
// messages.
type Message struct {
	MessageID      string    `json:"message_id" yaml:"message_id"`
	MessageText    string    `json:"message_text" yaml:"message_text"`
	DequeueCount   int64     `json:"dequeue_count" yaml:"dequeue_count"`
	InsertionTime  time.Time `json:"insertion_time" yaml:"insertion_time"`
	ExpirationTime time.Time `json:"expiration_time" yaml:"expiration_time"`
	PopReceipt     string    `json:"-" yaml:"-"`
}
