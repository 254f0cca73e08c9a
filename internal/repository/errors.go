package repository

import (
	"errors"
)

// Column families used by the engine
const (
	FamilyFolders       = "folders"
	FamilyConversations = "conversations"
)

// Common repository errors
var (
	ErrCorruptColumn = errors.New("corrupt column value")
)
