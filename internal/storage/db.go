package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NgigiN/finance-tracker/internal/transaction"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// State is the connection lifecycle of a Store.
type State int

const (
	StateUninitialized State = iota
	StateOpening
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Store persists transactions in a versioned SQLite database.
// It is safe for concurrent use.
type Store struct {
	path       string
	log        zerolog.Logger
	now        func() time.Time
	migrations []Migration

	initMu sync.Mutex

	mu      sync.RWMutex
	state   State
	db      *gorm.DB
	initErr error
}

type Option func(*Store)

// WithLogger sets the logger used by the store and by gorm.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for timestamps and date validation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMigrations replaces DefaultMigrations.
func WithMigrations(ms ...Migration) Option {
	return func(s *Store) { s.migrations = ms }
}

// New returns an uninitialized store backed by the SQLite file at path.
// Use ":memory:" for a throwaway database.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		log:        log.Logger.With().Str("component", "storage").Logger(),
		now:        time.Now,
		migrations: DefaultMigrations(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDatabase creates a store and initializes it.
func NewDatabase(ctx context.Context, dbPath string, opts ...Option) (*Store, error) {
	s := New(dbPath, opts...)
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Init opens the database, creating or upgrading the schema as needed.
// It is a no-op on a ready store. A failed store keeps returning its
// original error; build a new Store to try again.
func (s *Store) Init(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	state, initErr := s.state, s.initErr
	s.mu.RUnlock()
	switch state {
	case StateReady:
		return nil
	case StateFailed:
		return initErr
	case StateClosed:
		return ErrClosed
	}

	s.setState(StateOpening)
	db, err := s.open(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.initErr = err
		s.log.Error().Err(err).Str("path", s.path).Msg("database error")
		return err
	}
	s.db = db
	s.state = StateReady
	s.log.Info().Str("path", s.path).Int("version", targetVersion(s.migrations)).Msg("database initialized successfully")
	return nil
}

func (s *Store) open(ctx context.Context) (*gorm.DB, error) {
	migrations, err := sortMigrations(s.migrations)
	if err != nil {
		return nil, err
	}
	s.migrations = migrations

	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger:  zerologger{Logger: s.log},
		NowFunc: s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across calls.
	sqlDB.SetMaxOpenConns(1)

	if err := s.migrate(db.WithContext(ctx)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Close releases the database. Every later operation fails with ErrNotInitialized.
func (s *Store) Close() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.db
	s.db = nil
	s.state = StateClosed
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, ErrNotInitialized
	}
	return s.db.WithContext(ctx), nil
}

// writeConn is conn for write paths. Writes run to completion once issued,
// so cancellation of ctx is ignored.
func (s *Store) writeConn(ctx context.Context) (*gorm.DB, error) {
	return s.conn(context.WithoutCancel(ctx))
}

// SchemaVersion returns the version marker stored in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	v, err := storedVersion(db)
	if err != nil {
		return 0, readError("read schema version", err)
	}
	return v, nil
}

// GetAll returns every stored transaction in no particular order.
func (s *Store) GetAll(ctx context.Context) ([]transaction.Transaction, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Transaction
	if err := db.Find(&rows).Error; err != nil {
		return nil, readError("load transactions", err)
	}
	return toDomain(rows), nil
}

// Get returns the transaction with id.
func (s *Store) Get(ctx context.Context, id int64) (transaction.Transaction, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return transaction.Transaction{}, err
	}
	var row Transaction
	if err := db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return transaction.Transaction{}, ErrNotFound
		}
		return transaction.Transaction{}, readError("load transaction", err)
	}
	return row.toDomain(), nil
}

// Find returns the transactions matching f using the type, date and
// category indexes. The result is the same set as filtering GetAll with
// f.Match, in no particular order.
func (s *Store) Find(ctx context.Context, f Filter) ([]transaction.Transaction, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Transaction
	if err := f.scope(db.Model(&Transaction{})).Find(&rows).Error; err != nil {
		return nil, readError("find transactions", err)
	}
	return toDomain(rows), nil
}

// CategoryTotals sums amounts per category for one transaction type.
func (s *Store) CategoryTotals(ctx context.Context, typ transaction.Type) (map[string]int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category string
		Total    int64
	}
	err = db.Model(&Transaction{}).
		Select("category, SUM(amount) AS total").
		Where("type = ?", string(typ)).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, readError("summarize categories", err)
	}
	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.Category] = r.Total
	}
	return totals, nil
}

// Save validates c and stores it, returning the new id. Nothing is written
// when validation fails, or when c.SourceRef is already stored, in which
// case the error is a *DuplicateError.
func (s *Store) Save(ctx context.Context, c transaction.Candidate) (int64, error) {
	db, err := s.writeConn(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	c = normalize(c)
	if violations := transaction.ValidateAt(c, now); len(violations) > 0 {
		return 0, &ValidationError{Violations: violations}
	}

	row := newRow(c, now)
	err = db.Transaction(func(tx *gorm.DB) error {
		if row.SourceRef != nil {
			var existing Transaction
			err := tx.Where("source_ref = ?", *row.SourceRef).Take(&existing).Error
			if err == nil {
				return &DuplicateError{Ref: *row.SourceRef, ID: existing.ID}
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return 0, writeError("save transaction", err)
	}
	s.log.Debug().Int64("id", row.ID).Str("type", row.Type).Int64("amount", row.Amount).Msg("transaction saved")
	return row.ID, nil
}

// Update merges p over the stored transaction, validates the result and
// writes it. The stored record is left untouched on any failure.
func (s *Store) Update(ctx context.Context, id int64, p transaction.Patch) error {
	db, err := s.writeConn(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	err = db.Transaction(func(tx *gorm.DB) error {
		var existing Transaction
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		c := normalize(existing.toDomain().Apply(p).Candidate())
		if violations := transaction.ValidateAt(c, now); len(violations) > 0 {
			return &ValidationError{Violations: violations}
		}

		updated := newRow(c, existing.CreatedAt)
		updated.ID = existing.ID
		updated.UpdatedAt = now
		if updated.UpdatedAt.Before(existing.UpdatedAt) {
			updated.UpdatedAt = existing.UpdatedAt
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		return writeError("update transaction", err)
	}
	s.log.Debug().Int64("id", id).Msg("transaction updated")
	return nil
}

// Delete removes the transaction with id. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, id int64) error {
	db, err := s.writeConn(ctx)
	if err != nil {
		return err
	}
	var affected int64
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Transaction{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return writeError("delete transaction", err)
	}
	s.log.Debug().Int64("id", id).Int64("rows", affected).Msg("transaction deleted")
	return nil
}

func normalize(c transaction.Candidate) transaction.Candidate {
	c.Name = strings.TrimSpace(c.Name)
	c.Date = strings.TrimSpace(c.Date)
	c.Category = strings.TrimSpace(c.Category)
	c.Description = strings.TrimSpace(c.Description)
	c.SourceRef = strings.TrimSpace(c.SourceRef)
	return c
}
