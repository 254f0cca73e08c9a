package models

import (
	"strings"
)

// Delimiter separates the parts of a composite row key
const Delimiter = ":"

// Well-known folder names
const (
	FolderInbox = "inbox"
	FolderSent  = "sent"
)

// FolderKey identifies one owner's folder
type FolderKey struct {
	Owner string
	Name  string
}

// RowKey returns the folders row key, owner:name
func (k FolderKey) RowKey() string {
	return k.Owner + Delimiter + k.Name
}

// String implements fmt.Stringer
func (k FolderKey) String() string {
	return k.RowKey()
}

// FolderEntry is one column of a folder row: an index entry pointing at a
// conversation. EntryID is time ordered and is the column name.
type FolderEntry struct {
	EntryID        string
	ConversationID string
	// CreatedAt is the entry creation time in microseconds since the epoch
	CreatedAt int64
	// WrittenAt is the write time reported by the store
	WrittenAt int64
}

// Folder is a page of an owner's folder as served to clients
type Folder struct {
	Owner         string         `json:"owner"`
	Name          string         `json:"name"`
	Conversations []Conversation `json:"conversations"`
}

// NewFolder creates an empty folder page for the given key
func NewFolder(key FolderKey) *Folder {
	return &Folder{
		Owner:         key.Owner,
		Name:          key.Name,
		Conversations: []Conversation{},
	}
}

// ConversationID builds the per-owner conversation row key
func ConversationID(owner, discriminator string) string {
	return owner + Delimiter + discriminator
}

// SplitConversationID returns the owner and discriminator of a conversation id.
// ok is false when the id has no delimiter.
func SplitConversationID(id string) (owner, discriminator string, ok bool) {
	return strings.Cut(id, Delimiter)
}
