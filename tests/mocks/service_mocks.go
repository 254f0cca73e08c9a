package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/postoffice/internal/models"
)

// MockMessenger implements services.Messenger
type MockMessenger struct {
	mock.Mock
}

// StartConversation starts a conversation and returns its discriminator
func (m *MockMessenger) StartConversation(ctx context.Context, from, to, subject, body string) (string, error) {
	args := m.Called(ctx, from, to, subject, body)
	return args.String(0), args.Error(1)
}

// Reply posts a message into an existing conversation
func (m *MockMessenger) Reply(ctx context.Context, from, to, subject, body, discriminator string) error {
	args := m.Called(ctx, from, to, subject, body, discriminator)
	return args.Error(0)
}

// SendMessage delivers one copy of a message
func (m *MockMessenger) SendMessage(ctx context.Context, owner, folder, conversationID string, message *models.Message) error {
	args := m.Called(ctx, owner, folder, conversationID, message)
	return args.Error(0)
}

// MockFolderService implements services.FolderService
type MockFolderService struct {
	mock.Mock
}

// AssemblePage returns a folder page
func (m *MockFolderService) AssemblePage(ctx context.Context, key models.FolderKey, start, count int) (*models.Folder, error) {
	args := m.Called(ctx, key, start, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Folder), args.Error(1)
}

// Conversation returns one conversation
func (m *MockFolderService) Conversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

// Compact removes shadowed folder entries
func (m *MockFolderService) Compact(ctx context.Context, key models.FolderKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}
