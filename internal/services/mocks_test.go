package services

import (
	"sync"

	"github.com/welldanyogia/postoffice/internal/models"
)

// recordingNotifier collects folder bump notifications as "row=conversation"
type recordingNotifier struct {
	mu     sync.Mutex
	bumped []string
}

func (n *recordingNotifier) NotifyFolderBumped(key models.FolderKey, conversationID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bumped = append(n.bumped, key.RowKey()+"="+conversationID)
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.bumped...)
}
