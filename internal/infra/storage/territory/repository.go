package territory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

const table = "territories"

var columns = []string{
	"name",
	"territory_name",
	"COALESCE(parent_territory, '')",
	"is_group",
	"modified",
}

const subtreeQuery = `
WITH RECURSIVE subtree AS (
	SELECT name FROM territories WHERE name = $1
	UNION ALL
	SELECT c.name FROM territories c JOIN subtree s ON c.parent_territory = s.name
)
SELECT name FROM subtree ORDER BY name`

// Repository репозиторий дерева территорий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория территорий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает территорию
func (r *Repository) Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("name", "territory_name", "parent_territory", "is_group").
		Values(t.Name, t.TerritoryName, parentValue(t.Parent), t.IsGroup).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Modified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateTerritory
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return t, nil
}

// Update сохраняет территорию
func (r *Repository) Update(ctx context.Context, t *domain.Territory) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("territory_name", t.TerritoryName).
		Set("parent_territory", parentValue(t.Parent)).
		Set("is_group", t.IsGroup).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": t.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTerritoryNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByName получает территорию по имени
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.Territory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	var t domain.Territory
	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Name, &t.TerritoryName, &t.Parent, &t.IsGroup, &t.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTerritoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan territory: %v", ErrScanRow, err)
	}

	return &t, nil
}

// List возвращает территории, опционально только детей parent
func (r *Repository) List(ctx context.Context, parent string) ([]domain.Territory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(table).OrderBy("name")
	if parent != "" {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"parent_territory": parent})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]domain.Territory, 0)
	for rows.Next() {
		var t domain.Territory
		if err := rows.Scan(&t.Name, &t.TerritoryName, &t.Parent, &t.IsGroup, &t.Modified); err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// Delete удаляет территорию
func (r *Repository) Delete(ctx context.Context, name string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrLinked
		}
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTerritoryNotFound
	}

	return nil
}

// Roots имена корневых территорий
func (r *Repository) Roots(ctx context.Context) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name").
		From(table).
		Where(squirrel.Eq{"parent_territory": nil}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Roots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Roots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanNames(rows, "Roots")
}

// CountChildren количество прямых потомков территории
func (r *Repository) CountChildren(ctx context.Context, name string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"parent_territory": name}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountChildren - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountChildren - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Subtree имена территории и всех вложенных в неё
func (r *Repository) Subtree(ctx context.Context, name string) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, subtreeQuery, name)
	if err != nil {
		return nil, fmt.Errorf("%w: Subtree - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanNames(rows, "Subtree")
}

func scanNames(rows *sql.Rows, op string) ([]string, error) {
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %s - scan name: %v", ErrScanRow, op, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}
	return names, nil
}

func parentValue(parent string) sql.NullString {
	return sql.NullString{String: parent, Valid: parent != ""}
}
