package setup

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

const migrationsTable = "schema_migrations"

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT now()
)`

// Migrator применяет SQL файлы миграций в порядке имён
type Migrator struct {
	db        DBExecutor
	txManager TransactionManager
	files     fs.FS
	logger    Logger
}

// NewMigrator создает мигратор, files содержит *.sql в корне
func NewMigrator(db DBExecutor, txManager TransactionManager, files fs.FS, logger Logger) *Migrator {
	return &Migrator{
		db:        db,
		txManager: txManager,
		files:     files,
		logger:    logger,
	}
}

// Up применяет ещё не применённые миграции, каждую в своей транзакции
// Возвращает имена применённых файлов
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create %s: %w", migrationsTable, err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	var done []string
	for _, name := range names {
		if applied[name] {
			continue
		}

		body, err := fs.ReadFile(m.files, name)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", name, err)
		}

		err = m.txManager.Do(ctx, func(txCtx context.Context) error {
			executor := dbmetrics.GetExecutor(txCtx, m.db)
			if _, err := executor.ExecContext(txCtx, string(body)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}

			query, args, err := psqlbuilder.Insert(migrationsTable).
				Columns("version").
				Values(name).
				ToSql()
			if err != nil {
				return fmt.Errorf("build migration record query: %w", err)
			}
			if _, err := executor.ExecContext(txCtx, query, args...); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			m.logger.Error("Migrate: %v", err)
			return done, err
		}

		m.logger.Info("Migrate: applied %s", name)
		done = append(done, name)
	}

	return done, nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	query, args, err := psqlbuilder.Select("version").From(migrationsTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build applied migrations query: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applied migrations: %w", err)
	}
	return applied, nil
}
