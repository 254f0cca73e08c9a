package kvstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/postoffice/internal/database"
	apperrors "github.com/welldanyogia/postoffice/internal/errors"
)

// StoreContractSuite checks the behaviour every Store backend shares
type StoreContractSuite struct {
	suite.Suite
	newStore func(opts Options) Store
	store    Store
	ctx      context.Context
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(Options{})
}

func (s *StoreContractSuite) names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func (s *StoreContractSuite) seedRow(row string, names ...string) {
	for _, n := range names {
		require.NoError(s.T(), s.store.WriteColumn(s.ctx, "f", row, n, "v-"+n))
	}
}

func (s *StoreContractSuite) TestReadRowSlice_MissingRowIsEmpty() {
	cols, err := s.store.ReadRowSlice(s.ctx, "f", "nope", SliceRange{})
	s.NoError(err)
	s.Empty(cols)
}

func (s *StoreContractSuite) TestReadRowSlice_OrderAndLimit() {
	s.seedRow("r", "b", "d", "a", "c")

	cols, err := s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{})
	s.NoError(err)
	s.Equal([]string{"a", "b", "c", "d"}, s.names(cols))

	cols, err = s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{Reverse: true, Limit: 3})
	s.NoError(err)
	s.Equal([]string{"d", "c", "b"}, s.names(cols))
}

func (s *StoreContractSuite) TestReadRowSlice_Bounds() {
	s.seedRow("r", "a", "b", "c", "d", "e")

	cols, err := s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{Start: "b", End: "d"})
	s.NoError(err)
	s.Equal([]string{"b", "c", "d"}, s.names(cols))

	cols, err = s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{Start: "d", End: "b", Reverse: true})
	s.NoError(err)
	s.Equal([]string{"d", "c", "b"}, s.names(cols))
}

func (s *StoreContractSuite) TestWriteColumn_OverwritesValue() {
	s.NoError(s.store.WriteColumn(s.ctx, "f", "r", "a", "first"))
	s.NoError(s.store.WriteColumn(s.ctx, "f", "r", "a", "second"))

	cols, err := s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{})
	s.NoError(err)
	s.Require().Len(cols, 1)
	s.Equal("second", cols[0].Value)
	s.NotZero(cols[0].WrittenAt)
}

func (s *StoreContractSuite) TestFamiliesAreIsolated() {
	s.NoError(s.store.WriteColumn(s.ctx, "f", "r", "a", "x"))
	cols, err := s.store.ReadRowSlice(s.ctx, "g", "r", SliceRange{})
	s.NoError(err)
	s.Empty(cols)
}

func (s *StoreContractSuite) TestDeleteColumn() {
	s.seedRow("r", "a", "b")

	s.NoError(s.store.DeleteColumn(s.ctx, "f", "r", "a"))
	s.NoError(s.store.DeleteColumn(s.ctx, "f", "r", "missing"))

	cols, err := s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{})
	s.NoError(err)
	s.Equal([]string{"b"}, s.names(cols))
}

func (s *StoreContractSuite) TestReadRowsSlice() {
	s.seedRow("r1", "a", "b", "c")
	s.seedRow("r2", "x")

	rows, err := s.store.ReadRowsSlice(s.ctx, "f", []string{"r1", "r2", "r3"}, SliceRange{Reverse: true, Limit: 2})
	s.NoError(err)
	s.Len(rows, 2)
	s.Equal([]string{"c", "b"}, s.names(rows["r1"]))
	s.Equal([]string{"x"}, s.names(rows["r2"]))
	_, ok := rows["r3"]
	s.False(ok)

	rows, err = s.store.ReadRowsSlice(s.ctx, "f", nil, SliceRange{})
	s.NoError(err)
	s.Empty(rows)
}

func (s *StoreContractSuite) TestBatch_AppliesInOrder() {
	s.seedRow("r", "old")

	b := s.store.NewBatch().
		Delete("f", "r", "old").
		Write("f", "r", "new", "v").
		Write("f", "other", "z", "v")
	s.Equal(3, b.Len())
	s.NoError(b.Execute(s.ctx))

	cols, err := s.store.ReadRowSlice(s.ctx, "f", "r", SliceRange{})
	s.NoError(err)
	s.Equal([]string{"new"}, s.names(cols))
}

func (s *StoreContractSuite) TestBatch_EmptyIsNoop() {
	s.NoError(s.store.NewBatch().Execute(s.ctx))
}

func (s *StoreContractSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

func TestMemoryStoreContract(t *testing.T) {
	suite.Run(t, &StoreContractSuite{
		newStore: func(opts Options) Store { return NewMemoryStore(opts) },
	})
}

func TestGormStoreContract(t *testing.T) {
	suite.Run(t, &StoreContractSuite{
		newStore: func(opts Options) Store {
			db, err := database.ConnectSQLite(":memory:")
			require.NoError(t, err)
			require.NoError(t, database.Migrate(db))
			t.Cleanup(func() { _ = database.Close(db) })
			return NewGormStore(db, opts)
		},
	})
}

func TestParseConsistency(t *testing.T) {
	tests := []struct {
		in      string
		want    Consistency
		wantErr bool
	}{
		{"", ConsistencyOne, false},
		{"ONE", ConsistencyOne, false},
		{" quorum ", ConsistencyQuorum, false},
		{"all", ConsistencyAll, false},
		{"two", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConsistency(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := NewMemoryStore(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WriteColumn(ctx, "f", "r", "a", "v")
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_BatchPartialAtConsistencyOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{Consistency: ConsistencyOne})
	require.NoError(t, store.WriteColumn(ctx, "f", "r", "old", "v"))

	store.SetFault(func(op Op, family, row, name string) error {
		if op == OpWrite && name == "new" {
			return errors.New("node down")
		}
		return nil
	})

	err := store.NewBatch().Delete("f", "r", "old").Write("f", "r", "new", "v").Execute(ctx)
	require.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	store.SetFault(nil)
	cols, err := store.ReadRowSlice(ctx, "f", "r", SliceRange{})
	require.NoError(t, err)
	require.Empty(t, cols, "delete ran, insert did not")
}

func TestMemoryStore_BatchAtomicAtQuorum(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Options{Consistency: ConsistencyQuorum})
	require.NoError(t, store.WriteColumn(ctx, "f", "r", "old", "v"))

	store.SetFault(func(op Op, family, row, name string) error {
		if op == OpWrite && name == "new" {
			return errors.New("node down")
		}
		return nil
	})

	err := store.NewBatch().Delete("f", "r", "old").Write("f", "r", "new", "v").Execute(ctx)
	require.Error(t, err)

	store.SetFault(nil)
	cols, err := store.ReadRowSlice(ctx, "f", "r", SliceRange{})
	require.NoError(t, err)
	require.Len(t, cols, 1)
	require.Equal(t, "old", cols[0].Name)
}
