package models

// Conversation is one owner's view of a two-party exchange.
// Messages are ordered newest first.
type Conversation struct {
	ID string `json:"id"`
	// LastReceivedAt is the creation time of the folder entry that listed
	// this conversation, in microseconds since the epoch.
	LastReceivedAt int64     `json:"lastReceivedAt"`
	Messages       []Message `json:"messages"`
}
