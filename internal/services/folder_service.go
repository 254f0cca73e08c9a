package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/repository"
)

// FolderService assembles folder pages and conversations for the front ends
type FolderService interface {
	// AssemblePage returns conversations start..start+count of a folder,
	// most recently bumped first, each with its messages newest first
	AssemblePage(ctx context.Context, key models.FolderKey, start, count int) (*models.Folder, error)

	// Conversation returns every message of one conversation id
	Conversation(ctx context.Context, conversationID string) (*models.Conversation, error)

	// Compact removes folder entries shadowed by newer ones
	Compact(ctx context.Context, key models.FolderKey) (int, error)
}

// folderService implements FolderService
type folderService struct {
	folders  repository.FolderRepository
	messages repository.MessageRepository
	logger   *slog.Logger
}

// NewFolderService creates a new FolderService instance
func NewFolderService(folders repository.FolderRepository, messages repository.MessageRepository, logger *slog.Logger) FolderService {
	return &folderService{
		folders:  folders,
		messages: messages,
		logger:   logger,
	}
}

// AssemblePage reads a page of folder entries and the messages of every
// listed conversation in one batch. A conversation whose row is missing is
// listed with no messages.
func (s *folderService) AssemblePage(ctx context.Context, key models.FolderKey, start, count int) (*models.Folder, error) {
	folder := models.NewFolder(key)

	entries, err := s.folders.Page(ctx, key, start, count)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return folder, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ConversationID
	}
	byConversation, err := s.messages.ReadBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble folder %s: %w", key, err)
	}

	for _, e := range entries {
		messages := byConversation[e.ConversationID]
		if messages == nil {
			messages = []models.Message{}
		}
		folder.Conversations = append(folder.Conversations, models.Conversation{
			ID:             e.ConversationID,
			LastReceivedAt: e.CreatedAt,
			Messages:       messages,
		})
	}

	// Entry times follow entry id order, so this keeps the folder order.
	sort.SliceStable(folder.Conversations, func(i, j int) bool {
		return folder.Conversations[i].LastReceivedAt > folder.Conversations[j].LastReceivedAt
	})
	return folder, nil
}

// Conversation reads a whole conversation. An unknown id yields a
// conversation with no messages.
func (s *folderService) Conversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	messages, err := s.messages.ReadAll(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &models.Conversation{ID: conversationID, Messages: messages}, nil
}

func (s *folderService) Compact(ctx context.Context, key models.FolderKey) (int, error) {
	removed, err := s.folders.Compact(ctx, key)
	if err != nil {
		return 0, err
	}
	if s.logger != nil && removed > 0 {
		s.logger.Info("folder compacted",
			slog.String("folder", key.String()),
			slog.Int("removed", removed))
	}
	return removed, nil
}
