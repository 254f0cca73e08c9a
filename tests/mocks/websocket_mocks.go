package mocks

import (
	"sync"

	"github.com/welldanyogia/postoffice/internal/models"
)

// NotificationRecord records a folder bump sent through the mock notifier
type NotificationRecord struct {
	Key            models.FolderKey
	ConversationID string
}

// MockNotifier implements services.Notifier and records every call
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []NotificationRecord
}

// NewMockNotifier creates a new MockNotifier instance
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Notifications: make([]NotificationRecord, 0)}
}

// NotifyFolderBumped records the notification
func (m *MockNotifier) NotifyFolderBumped(key models.FolderKey, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, NotificationRecord{Key: key, ConversationID: conversationID})
}

// Records returns a copy of the recorded notifications
func (m *MockNotifier) Records() []NotificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotificationRecord(nil), m.Notifications...)
}
