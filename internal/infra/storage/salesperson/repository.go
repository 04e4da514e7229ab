package salesperson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

const table = "sales_persons"

var columns = []string{
	"name",
	"sales_person_name",
	"COALESCE(parent_sales_person, '')",
	"is_group",
	"enabled",
	"user_id",
	"contact_mobile",
	"contact_email",
	"employee",
	"modified",
}

// Потомки узла вместе с ним самим
const subtreeQuery = `
WITH RECURSIVE subtree AS (
	SELECT name FROM sales_persons WHERE name = $1
	UNION ALL
	SELECT c.name FROM sales_persons c JOIN subtree s ON c.parent_sales_person = s.name
)
SELECT name FROM subtree ORDER BY name`

// Repository репозиторий дерева продавцов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория продавцов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает продавца
func (r *Repository) Create(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	values := writeMap(sp)
	values["name"] = sp.Name

	query, args, err := psqlbuilder.Insert(table).
		SetMap(values).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&sp.Modified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateSalesPerson
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return sp, nil
}

// Update сохраняет продавца
func (r *Repository) Update(ctx context.Context, sp *domain.SalesPerson) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(sp)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": sp.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&sp.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSalesPersonNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByName получает продавца по имени
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.SalesPerson, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	sp, err := scanSalesPerson(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSalesPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan sales person: %v", ErrScanRow, err)
	}

	return sp, nil
}

// List возвращает всех продавцов, опционально только детей parent
func (r *Repository) List(ctx context.Context, parent string) ([]domain.SalesPerson, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(table).OrderBy("name")
	if parent != "" {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"parent_sales_person": parent})
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

	result := make([]domain.SalesPerson, 0)
	for rows.Next() {
		sp, err := scanSalesPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}
		result = append(result, *sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// Delete удаляет продавца
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
		return ErrSalesPersonNotFound
	}

	return nil
}

// Roots имена корневых узлов (без родителя)
func (r *Repository) Roots(ctx context.Context) ([]string, error) {
	return r.names(ctx, "Roots", psqlbuilder.Select("name").
		From(table).
		Where(squirrel.Eq{"parent_sales_person": nil}).
		OrderBy("name"))
}

// CountChildren количество прямых потомков узла
func (r *Repository) CountChildren(ctx context.Context, name string) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{"parent_sales_person": name}).
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

// Subtree имена узла и всех его потомков
func (r *Repository) Subtree(ctx context.Context, name string) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rows, err := executor.QueryContext(ctx, subtreeQuery, name)
	if err != nil {
		return nil, fmt.Errorf("%w: Subtree - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanNames(rows, "Subtree")
}

// FindByUser активный продавец, привязанный к пользователю
// Пустая строка, если такого нет
func (r *Repository) FindByUser(ctx context.Context, userID string) (string, error) {
	names, err := r.names(ctx, "FindByUser", psqlbuilder.Select("name").
		From(table).
		Where(squirrel.Eq{"user_id": userID, "enabled": true}).
		OrderBy("name").
		Limit(1))
	if err != nil || len(names) == 0 {
		return "", err
	}
	return names[0], nil
}

// SearchWithAvailability поиск продавцов для автодополнения
// При заданном интервале считает пересекающиеся с ним встречи продавца:
// свободные идут первыми
func (r *Repository) SearchWithAvailability(ctx context.Context, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("sp.name").From(table + " sp")

	if q.WithAvailability() {
		join := "appointments a ON a.sales_person = sp.name AND a.docstatus = ? AND a.status <> ?" +
			" AND a.end_dt > ? AND a.scheduled_dt < ?"
		joinArgs := []interface{}{domain.DocStatusSubmitted, domain.AppointmentStatusRescheduled, *q.Start, *q.End}
		if q.Exclude != "" {
			join += " AND a.name <> ?"
			joinArgs = append(joinArgs, q.Exclude)
		}
		selectBuilder = selectBuilder.Column("COUNT(a.name)").LeftJoin(join, joinArgs...)
	}

	selectBuilder = selectBuilder.Where(squirrel.Eq{"sp.enabled": true})
	if len(q.Allowed) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"sp.name": q.Allowed})
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"sp.is_group": false})
	}
	if q.Txt != "" {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			psqlbuilder.ILike("sp.name", q.Txt),
			psqlbuilder.ILike("sp.sales_person_name", q.Txt),
		})
	}

	selectBuilder = selectBuilder.
		GroupBy("sp.name").
		OrderByClause("COALESCE(NULLIF(STRPOS(LOWER(sp.name), LOWER(?)), 0), ?)", strings.ReplaceAll(q.Txt, "%", ""), domain.MissingPosition)
	if q.WithAvailability() {
		selectBuilder = selectBuilder.OrderBy("COUNT(a.name)")
	}
	selectBuilder = selectBuilder.OrderBy("sp.name")

	limit := q.Limit
	if limit == 0 {
		limit = domain.DefaultPageLength
	}
	selectBuilder = selectBuilder.Offset(q.Offset).Limit(limit)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: SearchWithAvailability - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SearchWithAvailability - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	options := make([]domain.SalesPersonOption, 0)
	for rows.Next() {
		var opt domain.SalesPersonOption
		if q.WithAvailability() {
			var booked int
			if err := rows.Scan(&opt.Name, &booked); err != nil {
				return nil, fmt.Errorf("%w: SearchWithAvailability - scan row: %v", ErrScanRow, err)
			}
			opt.Availability = domain.SalesPersonAvailable
			if booked > 0 {
				opt.Availability = domain.SalesPersonUnavailable
			}
		} else if err := rows.Scan(&opt.Name); err != nil {
			return nil, fmt.Errorf("%w: SearchWithAvailability - scan row: %v", ErrScanRow, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SearchWithAvailability - rows error: %v", ErrScanRow, err)
	}

	return options, nil
}

func (r *Repository) names(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	return scanNames(rows, op)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSalesPerson(row rowScanner) (*domain.SalesPerson, error) {
	var sp domain.SalesPerson
	err := row.Scan(
		&sp.Name,
		&sp.SalesPersonName,
		&sp.Parent,
		&sp.IsGroup,
		&sp.Enabled,
		&sp.UserID,
		&sp.ContactMobile,
		&sp.ContactEmail,
		&sp.Employee,
		&sp.Modified,
	)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func writeMap(sp *domain.SalesPerson) map[string]interface{} {
	return map[string]interface{}{
		"sales_person_name":   sp.SalesPersonName,
		"parent_sales_person": sql.NullString{String: sp.Parent, Valid: sp.Parent != ""},
		"is_group":            sp.IsGroup,
		"enabled":             sp.Enabled,
		"user_id":             sp.UserID,
		"contact_mobile":      sp.ContactMobile,
		"contact_email":       sp.ContactEmail,
		"employee":            sp.Employee,
	}
}
