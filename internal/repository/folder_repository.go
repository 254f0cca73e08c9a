package repository

import (
	"context"
	"fmt"

	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/idgen"
	"github.com/welldanyogia/postoffice/internal/kvstore"
	"github.com/welldanyogia/postoffice/internal/models"
)

// FolderRepository is the per-owner, recency ordered index of conversations.
//
// A folder is one row of the folders family keyed owner:name. Each column
// is an entry: the name is a time-ordered entry id and the value is a
// conversation id. Moving a conversation to the top deletes its entries and
// inserts a fresh one. The two steps are not atomic, so a folder may briefly
// hold no entry or two entries for a conversation; reads keep only the
// newest entry of each conversation.
type FolderRepository interface {
	Bump(ctx context.Context, key models.FolderKey, conversationID string) (*models.FolderEntry, error)
	Page(ctx context.Context, key models.FolderKey, start, count int) ([]models.FolderEntry, error)
	Entries(ctx context.Context, key models.FolderKey) ([]models.FolderEntry, error)
	Compact(ctx context.Context, key models.FolderKey) (int, error)
}

// folderRepository implements FolderRepository on a column store
type folderRepository struct {
	store kvstore.Store
}

// NewFolderRepository creates a new FolderRepository instance
func NewFolderRepository(store kvstore.Store) FolderRepository {
	return &folderRepository{store: store}
}

// Bump places conversationID at the top of the folder. Adding a conversation
// for the first time and moving an existing one are the same operation:
// delete whatever entries exist for it, then insert a new entry.
func (r *folderRepository) Bump(ctx context.Context, key models.FolderKey, conversationID string) (*models.FolderEntry, error) {
	row := key.RowKey()
	cols, err := r.store.ReadRowSlice(ctx, FamilyFolders, row, kvstore.SliceRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder %s: %w", row, err)
	}

	batch := r.store.NewBatch()
	for _, col := range cols {
		if col.Value == conversationID {
			batch.Delete(FamilyFolders, row, col.Name)
		}
	}

	entryID := idgen.New()
	batch.Write(FamilyFolders, row, entryID, conversationID)
	if err := batch.Execute(ctx); err != nil {
		return nil, fmt.Errorf("failed to bump %s in folder %s: %w", conversationID, row, err)
	}

	entry := newEntry(kvstore.Column{Name: entryID, Value: conversationID})
	return &entry, nil
}

// Page returns up to count entries starting at offset start, newest first,
// one per conversation. Offsets past the end give an empty page.
func (r *folderRepository) Page(ctx context.Context, key models.FolderKey, start, count int) ([]models.FolderEntry, error) {
	if start < 0 {
		return nil, apperrors.InvalidInput("start", "must not be negative")
	}
	if count <= 0 {
		return nil, apperrors.InvalidInput("count", "must be positive")
	}
	want := start + count
	if want < start {
		return nil, apperrors.InvalidInput("start", "is out of range")
	}

	row := key.RowKey()
	limit := want
	var entries []models.FolderEntry
	for {
		cols, err := r.store.ReadRowSlice(ctx, FamilyFolders, row, kvstore.SliceRange{Reverse: true, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("failed to read folder %s: %w", row, err)
		}
		entries = dedupe(cols)
		// Duplicates consumed part of the slice; read further until the
		// page is full or the row is exhausted.
		if len(entries) >= want || len(cols) < limit {
			break
		}
		limit += want - len(entries)
	}

	if start >= len(entries) {
		return []models.FolderEntry{}, nil
	}
	end := want
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], nil
}

// Entries returns every entry of the folder newest first, duplicates included
func (r *folderRepository) Entries(ctx context.Context, key models.FolderKey) ([]models.FolderEntry, error) {
	row := key.RowKey()
	cols, err := r.store.ReadRowSlice(ctx, FamilyFolders, row, kvstore.SliceRange{Reverse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", row, err)
	}
	entries := make([]models.FolderEntry, len(cols))
	for i, col := range cols {
		entries[i] = newEntry(col)
	}
	return entries, nil
}

// Compact deletes every entry shadowed by a newer entry for the same
// conversation and returns how many were removed
func (r *folderRepository) Compact(ctx context.Context, key models.FolderKey) (int, error) {
	row := key.RowKey()
	cols, err := r.store.ReadRowSlice(ctx, FamilyFolders, row, kvstore.SliceRange{Reverse: true})
	if err != nil {
		return 0, fmt.Errorf("failed to read folder %s: %w", row, err)
	}

	seen := make(map[string]struct{}, len(cols))
	batch := r.store.NewBatch()
	for _, col := range cols {
		if _, ok := seen[col.Value]; ok {
			batch.Delete(FamilyFolders, row, col.Name)
			continue
		}
		seen[col.Value] = struct{}{}
	}

	if batch.Len() == 0 {
		return 0, nil
	}
	if err := batch.Execute(ctx); err != nil {
		return 0, fmt.Errorf("failed to compact folder %s: %w", row, err)
	}
	return batch.Len(), nil
}

// dedupe keeps the first, and therefore newest, entry of each conversation
// from columns ordered newest first
func dedupe(cols []kvstore.Column) []models.FolderEntry {
	seen := make(map[string]struct{}, len(cols))
	entries := make([]models.FolderEntry, 0, len(cols))
	for _, col := range cols {
		if _, ok := seen[col.Value]; ok {
			continue
		}
		seen[col.Value] = struct{}{}
		entries = append(entries, newEntry(col))
	}
	return entries
}

func newEntry(col kvstore.Column) models.FolderEntry {
	entry := models.FolderEntry{
		EntryID:        col.Name,
		ConversationID: col.Value,
		WrittenAt:      col.WrittenAt,
		CreatedAt:      col.WrittenAt,
	}
	if ts, err := idgen.Time(col.Name); err == nil {
		entry.CreatedAt = ts.UnixMicro()
	}
	return entry
}
