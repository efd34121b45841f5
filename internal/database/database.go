package database

import (
	"fmt"
	"os"
	"time"

	"github.com/sjperalta/fintera-ledger/internal/models"
	pkgLogger "github.com/sjperalta/fintera-ledger/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := logger.Silent
	if os.Getenv("ENVIRONMENT") != "production" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	// Postings open their own transactions explicitly
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the tables and then installs the constraints gorm tags
// cannot express. Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Account{},
		&models.JournalEntry{},
		&models.JournalLine{},
		&models.Shift{},
		&models.Sale{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range ledgerGuards {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

var ledgerGuards = []string{
	// One side of every line, never both, never neither
	`DO $$ BEGIN
		ALTER TABLE journal_lines ADD CONSTRAINT chk_journal_lines_one_side
		CHECK (debit >= 0 AND credit >= 0 AND ((debit > 0) <> (credit > 0)));
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,

	// Entry balance is checked at commit, after all lines are in
	`CREATE OR REPLACE FUNCTION journal_entry_balanced() RETURNS trigger AS $$
	DECLARE
		d numeric;
		c numeric;
	BEGIN
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0) INTO d, c
		FROM journal_lines WHERE entry_id = NEW.entry_id;
		IF d <> c THEN
			RAISE EXCEPTION 'journal entry % does not balance: debit % credit %', NEW.entry_id, d, c;
		END IF;
		RETURN NULL;
	END $$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS trg_journal_lines_balanced ON journal_lines`,
	`CREATE CONSTRAINT TRIGGER trg_journal_lines_balanced
		AFTER INSERT ON journal_lines
		DEFERRABLE INITIALLY DEFERRED
		FOR EACH ROW EXECUTE FUNCTION journal_entry_balanced()`,

	// Posted rows are immutable
	`CREATE OR REPLACE FUNCTION journal_immutable() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'journal rows are append-only: % on % rejected', TG_OP, TG_TABLE_NAME;
	END $$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS trg_journal_entries_immutable ON journal_entries`,
	`CREATE TRIGGER trg_journal_entries_immutable
		BEFORE UPDATE OR DELETE ON journal_entries
		FOR EACH ROW EXECUTE FUNCTION journal_immutable()`,
	`DROP TRIGGER IF EXISTS trg_journal_lines_immutable ON journal_lines`,
	`CREATE TRIGGER trg_journal_lines_immutable
		BEFORE UPDATE OR DELETE ON journal_lines
		FOR EACH ROW EXECUTE FUNCTION journal_immutable()`,
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
