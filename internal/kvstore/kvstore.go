// Package kvstore is the column store the messaging engine runs on.
//
// Data is organised as column families holding rows; a row is a sorted map
// from column name to value, and every column remembers when it was last
// written. There are no multi-row transactions: a Batch is applied in order
// and, at consistency level One, a failure part way through leaves the
// earlier mutations in place.
package kvstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Column is a single named value in a row
type Column struct {
	Name  string
	Value string
	// WrittenAt is the write time in microseconds since the epoch
	WrittenAt int64
}

// SliceRange selects a run of columns from a row. Start and End are
// inclusive bounds given in iteration order, so with Reverse set Start is
// the greatest name returned. Empty bounds are open. A zero Limit returns
// every matching column.
type SliceRange struct {
	Start   string
	End     string
	Limit   int
	Reverse bool
}

// Store is the set of column store primitives the engine depends on
type Store interface {
	WriteColumn(ctx context.Context, family, row, name, value string) error
	DeleteColumn(ctx context.Context, family, row, name string) error
	ReadRowSlice(ctx context.Context, family, row string, r SliceRange) ([]Column, error)
	// ReadRowsSlice reads the same slice from several rows at once. Rows
	// without any matching column are absent from the result.
	ReadRowsSlice(ctx context.Context, family string, rows []string, r SliceRange) (map[string][]Column, error)
	NewBatch() Batch
	Ping(ctx context.Context) error
}

// Batch queues mutations and applies them together
type Batch interface {
	Write(family, row, name, value string) Batch
	Delete(family, row, name string) Batch
	Len() int
	Execute(ctx context.Context) error
}

// Consistency is the acknowledgement level applied to every store call
type Consistency string

const (
	// ConsistencyOne applies batch mutations one by one
	ConsistencyOne Consistency = "one"
	// ConsistencyQuorum applies a batch all-or-nothing
	ConsistencyQuorum Consistency = "quorum"
	// ConsistencyAll applies a batch all-or-nothing
	ConsistencyAll Consistency = "all"
)

// ParseConsistency parses a consistency level name, case-insensitively
func ParseConsistency(s string) (Consistency, error) {
	switch c := Consistency(strings.ToLower(strings.TrimSpace(s))); c {
	case ConsistencyOne, ConsistencyQuorum, ConsistencyAll:
		return c, nil
	case "":
		return ConsistencyOne, nil
	default:
		return "", fmt.Errorf("unknown consistency level %q", s)
	}
}

// Atomic reports whether batches run all-or-nothing at this level
func (c Consistency) Atomic() bool {
	return c == ConsistencyQuorum || c == ConsistencyAll
}

// DefaultTimeout bounds each store call when Options.Timeout is unset
const DefaultTimeout = 5 * time.Second

// Options configures a Store
type Options struct {
	Consistency Consistency
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Consistency == "" {
		o.Consistency = ConsistencyOne
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

type mutationKind int

const (
	mutationWrite mutationKind = iota
	mutationDelete
)

type mutation struct {
	kind   mutationKind
	family string
	row    string
	name   string
	value  string
}

// mutations is the queue shared by the Batch implementations
type mutations []mutation

func (m *mutations) write(family, row, name, value string) {
	*m = append(*m, mutation{kind: mutationWrite, family: family, row: row, name: name, value: value})
}

func (m *mutations) delete(family, row, name string) {
	*m = append(*m, mutation{kind: mutationDelete, family: family, row: row, name: name})
}

// inRange reports whether name falls inside r's bounds
func inRange(name string, r SliceRange) bool {
	lo, hi := r.Start, r.End
	if r.Reverse {
		lo, hi = r.End, r.Start
	}
	if lo != "" && name < lo {
		return false
	}
	if hi != "" && name > hi {
		return false
	}
	return true
}

func nowMicros(now func() time.Time) int64 {
	return now().UnixMicro()
}
