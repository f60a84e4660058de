package storage

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Migration upgrades the schema to Version. Up runs inside a database
// transaction together with the version bump and must be idempotent.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

var transactionIndexes = []string{
	"idx_transactions_type",
	"idx_transactions_date",
	"idx_transactions_category",
}

const sourceRefIndex = "idx_transactions_source_ref"

// DefaultMigrations is the schema history of the transactions table.
func DefaultMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create transactions", Up: createTransactions},
		{Version: 2, Name: "ensure lookup indexes", Up: ensureIndexes},
		{Version: 3, Name: "repair updated_at", Up: repairUpdatedAt},
		{Version: 4, Name: "add source reference", Up: addSourceRef},
	}
}

func createTransactions(tx *gorm.DB) error {
	if tx.Migrator().HasTable(&Transaction{}) {
		return nil
	}
	return tx.Migrator().CreateTable(&Transaction{})
}

func ensureIndexes(tx *gorm.DB) error {
	m := tx.Migrator()
	for _, name := range transactionIndexes {
		if m.HasIndex(&Transaction{}, name) {
			continue
		}
		if err := m.CreateIndex(&Transaction{}, name); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}

func repairUpdatedAt(tx *gorm.DB) error {
	return tx.Model(&Transaction{}).
		Where("updated_at < created_at").
		UpdateColumn("updated_at", gorm.Expr("created_at")).Error
}

// addSourceRef adds the nullable source_ref column. Its unique index keeps
// an imported record from being stored twice; NULLs never collide.
func addSourceRef(tx *gorm.DB) error {
	m := tx.Migrator()
	if !m.HasColumn(&Transaction{}, "SourceRef") {
		if err := m.AddColumn(&Transaction{}, "SourceRef"); err != nil {
			return fmt.Errorf("add source_ref: %w", err)
		}
	}
	if m.HasIndex(&Transaction{}, sourceRefIndex) {
		return nil
	}
	if err := m.CreateIndex(&Transaction{}, sourceRefIndex); err != nil {
		return fmt.Errorf("create index %s: %w", sourceRefIndex, err)
	}
	return nil
}

func sortMigrations(ms []Migration) ([]Migration, error) {
	out := append([]Migration(nil), ms...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i, m := range out {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q has invalid version %d", m.Name, m.Version)
		}
		if i > 0 && out[i-1].Version == m.Version {
			return nil, fmt.Errorf("duplicate migration version %d", m.Version)
		}
		if m.Up == nil {
			return nil, fmt.Errorf("migration %d has no Up step", m.Version)
		}
	}
	return out, nil
}

func targetVersion(ms []Migration) int {
	if len(ms) == 0 {
		return 0
	}
	return ms[len(ms)-1].Version
}

func storedVersion(db *gorm.DB) (int, error) {
	var sv schemaVersion
	err := db.First(&sv, schemaVersionRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return sv.Version, nil
}

// migrate brings db up to the highest migration version, one step at a time.
func (s *Store) migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaVersion{}); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	current, err := storedVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	target := targetVersion(s.migrations)
	if current > target {
		return fmt.Errorf("stored schema version %d is newer than %d", current, target)
	}
	if current == target {
		s.log.Debug().Int("version", current).Msg("schema up to date")
		return nil
	}

	s.log.Info().Int("from", current).Int("to", target).Msg("database upgrade needed")
	for _, m := range s.migrations {
		if m.Version <= current {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Save(&schemaVersion{ID: schemaVersionRowID, Version: m.Version, UpdatedAt: s.now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		s.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}
	return nil
}
