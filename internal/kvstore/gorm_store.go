package kvstore

import (
	"context"
	"time"

	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps every column family in the single "columns" table,
// keyed by (family, row_key, name)
type GormStore struct {
	db   *gorm.DB
	opts Options
	now  func() time.Time
}

// NewGormStore creates a Store on top of an open gorm connection.
// The schema is created by database.Migrate.
func NewGormStore(db *gorm.DB, opts Options) *GormStore {
	return &GormStore{
		db:   db,
		opts: opts.withDefaults(),
		now:  time.Now,
	}
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *GormStore) upsert(tx *gorm.DB, family, row, name, value string) error {
	rec := models.Column{
		Family:    family,
		RowKey:    row,
		Name:      name,
		Value:     value,
		WrittenAt: nowMicros(s.now),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "family"}, {Name: "row_key"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "written_at"}),
	}).Create(&rec).Error
}

func (s *GormStore) remove(tx *gorm.DB, family, row, name string) error {
	return tx.Where("family = ? AND row_key = ? AND name = ?", family, row, name).
		Delete(&models.Column{}).Error
}

// WriteColumn inserts or overwrites a column
func (s *GormStore) WriteColumn(ctx context.Context, family, row, name, value string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.upsert(s.db.WithContext(ctx), family, row, name, value); err != nil {
		return apperrors.Unavailable("write column", err)
	}
	return nil
}

// DeleteColumn removes a column; missing columns are ignored
func (s *GormStore) DeleteColumn(ctx context.Context, family, row, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.remove(s.db.WithContext(ctx), family, row, name); err != nil {
		return apperrors.Unavailable("delete column", err)
	}
	return nil
}

// sliceQuery applies the bounds and order of r to a query over one family
func sliceQuery(q *gorm.DB, r SliceRange) *gorm.DB {
	lo, hi := r.Start, r.End
	if r.Reverse {
		lo, hi = r.End, r.Start
	}
	if lo != "" {
		q = q.Where("name >= ?", lo)
	}
	if hi != "" {
		q = q.Where("name <= ?", hi)
	}
	if r.Reverse {
		return q.Order("name DESC")
	}
	return q.Order("name ASC")
}

// ReadRowSlice returns the columns of one row selected by r
func (s *GormStore) ReadRowSlice(ctx context.Context, family, row string, r SliceRange) ([]Column, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q := sliceQuery(s.db.WithContext(ctx).Where("family = ? AND row_key = ?", family, row), r)
	if r.Limit > 0 {
		q = q.Limit(r.Limit)
	}

	var recs []models.Column
	if err := q.Find(&recs).Error; err != nil {
		return nil, apperrors.Unavailable("read row", err)
	}

	cols := make([]Column, len(recs))
	for i, rec := range recs {
		cols[i] = Column{Name: rec.Name, Value: rec.Value, WrittenAt: rec.WrittenAt}
	}
	return cols, nil
}

// ReadRowsSlice reads all requested rows in a single query and applies the
// per-row limit afterwards
func (s *GormStore) ReadRowsSlice(ctx context.Context, family string, rows []string, r SliceRange) (map[string][]Column, error) {
	result := make(map[string][]Column, len(rows))
	if len(rows) == 0 {
		return result, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q := s.db.WithContext(ctx).Where("family = ? AND row_key IN ?", family, rows)
	q = sliceQuery(q.Order("row_key ASC"), r)

	var recs []models.Column
	if err := q.Find(&recs).Error; err != nil {
		return nil, apperrors.Unavailable("read rows", err)
	}

	for _, rec := range recs {
		cols := result[rec.RowKey]
		if r.Limit > 0 && len(cols) >= r.Limit {
			continue
		}
		result[rec.RowKey] = append(cols, Column{Name: rec.Name, Value: rec.Value, WrittenAt: rec.WrittenAt})
	}
	return result, nil
}

// Ping checks the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Unavailable("get database handle", err)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Unavailable("ping database", err)
	}
	return nil
}

// NewBatch starts a batch of mutations
func (s *GormStore) NewBatch() Batch {
	return &gormBatch{store: s}
}

type gormBatch struct {
	store *GormStore
	muts  mutations
}

func (b *gormBatch) Write(family, row, name, value string) Batch {
	b.muts.write(family, row, name, value)
	return b
}

func (b *gormBatch) Delete(family, row, name string) Batch {
	b.muts.delete(family, row, name)
	return b
}

func (b *gormBatch) Len() int {
	return len(b.muts)
}

// Execute applies the queued mutations in order. At an atomic consistency
// level they run in one transaction; otherwise each is its own statement
// and a failure leaves the earlier ones applied.
func (b *gormBatch) Execute(ctx context.Context) error {
	if len(b.muts) == 0 {
		return nil
	}
	s := b.store
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	apply := func(tx *gorm.DB) error {
		for _, m := range b.muts {
			var err error
			switch m.kind {
			case mutationWrite:
				err = s.upsert(tx, m.family, m.row, m.name, m.value)
			case mutationDelete:
				err = s.remove(tx, m.family, m.row, m.name)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	db := s.db.WithContext(ctx)
	var err error
	if s.opts.Consistency.Atomic() {
		err = db.Transaction(apply)
	} else {
		err = apply(db)
	}
	if err != nil {
		return apperrors.Unavailable("execute batch", err)
	}
	return nil
}
