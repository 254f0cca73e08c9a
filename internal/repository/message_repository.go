package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/welldanyogia/postoffice/internal/idgen"
	"github.com/welldanyogia/postoffice/internal/kvstore"
	"github.com/welldanyogia/postoffice/internal/models"
)

// MessageRepository is the append-only message log of every conversation.
// A conversation is one row of the conversations family; each message is a
// column named by its message id.
type MessageRepository interface {
	Append(ctx context.Context, conversationID string, message *models.Message) error
	ReadAll(ctx context.Context, conversationID string) ([]models.Message, error)
	ReadBatch(ctx context.Context, conversationIDs []string) (map[string][]models.Message, error)
}

// messageRepository implements MessageRepository on a column store
type messageRepository struct {
	store kvstore.Store
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(store kvstore.Store) MessageRepository {
	return &messageRepository{store: store}
}

// Append writes message as a new column of the conversation row
func (r *messageRepository) Append(ctx context.Context, conversationID string, message *models.Message) error {
	value, err := message.Encode()
	if err != nil {
		return err
	}
	if err := r.store.WriteColumn(ctx, FamilyConversations, conversationID, message.ID, value); err != nil {
		return fmt.Errorf("failed to append message to %s: %w", conversationID, err)
	}
	return nil
}

// ReadAll returns every message of a conversation, newest first. A
// conversation that does not exist has no messages.
func (r *messageRepository) ReadAll(ctx context.Context, conversationID string) ([]models.Message, error) {
	cols, err := r.store.ReadRowSlice(ctx, FamilyConversations, conversationID, kvstore.SliceRange{Reverse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation %s: %w", conversationID, err)
	}
	return decodeMessages(conversationID, cols)
}

// ReadBatch reads several conversations in one store call. Conversations
// without messages map to an empty slice.
func (r *messageRepository) ReadBatch(ctx context.Context, conversationIDs []string) (map[string][]models.Message, error) {
	result := make(map[string][]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return result, nil
	}

	rows, err := r.store.ReadRowsSlice(ctx, FamilyConversations, conversationIDs, kvstore.SliceRange{Reverse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %d conversations: %w", len(conversationIDs), err)
	}

	for _, id := range conversationIDs {
		messages, err := decodeMessages(id, rows[id])
		if err != nil {
			return nil, err
		}
		result[id] = messages
	}
	return result, nil
}

func decodeMessages(conversationID string, cols []kvstore.Column) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(cols))
	for _, col := range cols {
		m, err := models.DecodeMessage(col.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: conversation %s column %s: %v", ErrCorruptColumn, conversationID, col.Name, err)
		}
		if m.ID == "" {
			m.ID = col.Name
		}
		messages = append(messages, *m)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return idgen.Compare(messages[i].ID, messages[j].ID) > 0
	})
	return messages, nil
}
