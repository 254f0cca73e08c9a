package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/postoffice/internal/models"
)

// MockMessageRepository implements repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Append appends a message to a conversation
func (m *MockMessageRepository) Append(ctx context.Context, conversationID string, message *models.Message) error {
	args := m.Called(ctx, conversationID, message)
	return args.Error(0)
}

// ReadAll reads a whole conversation
func (m *MockMessageRepository) ReadAll(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// ReadBatch reads several conversations
func (m *MockMessageRepository) ReadBatch(ctx context.Context, conversationIDs []string) (map[string][]models.Message, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]models.Message), args.Error(1)
}

// MockFolderRepository implements repository.FolderRepository
type MockFolderRepository struct {
	mock.Mock
}

// Bump moves a conversation to the top of a folder
func (m *MockFolderRepository) Bump(ctx context.Context, key models.FolderKey, conversationID string) (*models.FolderEntry, error) {
	args := m.Called(ctx, key, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FolderEntry), args.Error(1)
}

// Page reads a deduplicated page of folder entries
func (m *MockFolderRepository) Page(ctx context.Context, key models.FolderKey, start, count int) ([]models.FolderEntry, error) {
	args := m.Called(ctx, key, start, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FolderEntry), args.Error(1)
}

// Entries reads every folder entry
func (m *MockFolderRepository) Entries(ctx context.Context, key models.FolderKey) ([]models.FolderEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FolderEntry), args.Error(1)
}

// Compact removes shadowed folder entries
func (m *MockFolderRepository) Compact(ctx context.Context, key models.FolderKey) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}
