package kvstore

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/welldanyogia/postoffice/internal/errors"
)

// Op names a store primitive, for fault injection
type Op string

const (
	OpWrite  Op = "write"
	OpDelete Op = "delete"
	OpRead   Op = "read"
)

// FaultFunc decides whether a single store operation fails. A non-nil
// return is reported as store unavailability.
type FaultFunc func(op Op, family, row, name string) error

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	families map[string]map[string]map[string]Column
	opts     Options
	now      func() time.Time
	fault    FaultFunc
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		families: make(map[string]map[string]map[string]Column),
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// SetClock replaces the clock used for column write times
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetFault installs a fault hook; nil removes it
func (s *MemoryStore) SetFault(fault FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fault
}

func (s *MemoryStore) check(op Op, family, row, name string) error {
	if s.fault == nil {
		return nil
	}
	if err := s.fault(op, family, row, name); err != nil {
		return apperrors.Unavailable(string(op)+" "+family, err)
	}
	return nil
}

func (s *MemoryStore) put(family, row, name, value string) {
	rows, ok := s.families[family]
	if !ok {
		rows = make(map[string]map[string]Column)
		s.families[family] = rows
	}
	cols, ok := rows[row]
	if !ok {
		cols = make(map[string]Column)
		rows[row] = cols
	}
	cols[name] = Column{Name: name, Value: value, WrittenAt: nowMicros(s.now)}
}

func (s *MemoryStore) remove(family, row, name string) {
	cols := s.families[family][row]
	if cols == nil {
		return
	}
	delete(cols, name)
	if len(cols) == 0 {
		delete(s.families[family], row)
	}
}

// WriteColumn inserts or overwrites a column
func (s *MemoryStore) WriteColumn(ctx context.Context, family, row, name, value string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable("write column", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpWrite, family, row, name); err != nil {
		return err
	}
	s.put(family, row, name, value)
	return nil
}

// DeleteColumn removes a column; missing columns are ignored
func (s *MemoryStore) DeleteColumn(ctx context.Context, family, row, name string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable("delete column", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpDelete, family, row, name); err != nil {
		return err
	}
	s.remove(family, row, name)
	return nil
}

// ReadRowSlice returns the columns of one row selected by r
func (s *MemoryStore) ReadRowSlice(ctx context.Context, family, row string, r SliceRange) ([]Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Unavailable("read row", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(OpRead, family, row, ""); err != nil {
		return nil, err
	}
	return s.slice(family, row, r), nil
}

// ReadRowsSlice returns the columns of several rows selected by r
func (s *MemoryStore) ReadRowsSlice(ctx context.Context, family string, rows []string, r SliceRange) (map[string][]Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Unavailable("read rows", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string][]Column, len(rows))
	for _, row := range rows {
		if err := s.check(OpRead, family, row, ""); err != nil {
			return nil, err
		}
		if cols := s.slice(family, row, r); len(cols) > 0 {
			result[row] = cols
		}
	}
	return result, nil
}

func (s *MemoryStore) slice(family, row string, r SliceRange) []Column {
	cols := s.families[family][row]
	out := make([]Column, 0, len(cols))
	for name, col := range cols {
		if inRange(name, r) {
			out = append(out, col)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if r.Reverse {
			return out[i].Name > out[j].Name
		}
		return out[i].Name < out[j].Name
	})
	if r.Limit > 0 && len(out) > r.Limit {
		out = out[:r.Limit]
	}
	return out
}

// Ping always succeeds unless a read fault is installed
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(OpRead, "", "", "")
}

// NewBatch starts a batch of mutations
func (s *MemoryStore) NewBatch() Batch {
	return &memoryBatch{store: s}
}

type memoryBatch struct {
	store *MemoryStore
	muts  mutations
}

func (b *memoryBatch) Write(family, row, name, value string) Batch {
	b.muts.write(family, row, name, value)
	return b
}

func (b *memoryBatch) Delete(family, row, name string) Batch {
	b.muts.delete(family, row, name)
	return b
}

func (b *memoryBatch) Len() int {
	return len(b.muts)
}

func (b *memoryBatch) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Unavailable("execute batch", err)
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	atomic := s.opts.Consistency.Atomic()
	if atomic {
		for _, m := range b.muts {
			if err := s.check(m.op(), m.family, m.row, m.name); err != nil {
				return err
			}
		}
	}
	for _, m := range b.muts {
		if !atomic {
			if err := s.check(m.op(), m.family, m.row, m.name); err != nil {
				return err
			}
		}
		switch m.kind {
		case mutationWrite:
			s.put(m.family, m.row, m.name, m.value)
		case mutationDelete:
			s.remove(m.family, m.row, m.name)
		}
	}
	return nil
}

func (m mutation) op() Op {
	if m.kind == mutationDelete {
		return OpDelete
	}
	return OpWrite
}
