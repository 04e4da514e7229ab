package masters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

var nameTables = map[string]bool{
	TableLeadSources:    true,
	TableMarketSegments: true,
	TableSalesStages:    true,
	TableIndustryTypes:  true,
}

// Repository репозиторий справочников
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// EnsureName добавляет запись в справочник, если её ещё нет
// Возвращает true, если запись была добавлена
func (r *Repository) EnsureName(ctx context.Context, table, name string) (bool, error) {
	if !nameTables[table] {
		return false, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: EnsureName - build insert query: %v", ErrBuildQuery, err)
	}

	return r.execInserted(ctx, executor, "EnsureName", query, args)
}

// EnsureLeadSource добавляет источник лидов, если его ещё нет
func (r *Repository) EnsureLeadSource(ctx context.Context, s domain.LeadSource) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(TableLeadSources).
		Columns("name", "details").
		Values(s.Name, s.Details).
		Suffix("ON CONFLICT (name) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: EnsureLeadSource - build insert query: %v", ErrBuildQuery, err)
	}

	return r.execInserted(ctx, executor, "EnsureLeadSource", query, args)
}

// ListNames имена записей справочника
func (r *Repository) ListNames(ctx context.Context, table string) ([]string, error) {
	if !nameTables[table] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name").From(table).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListNames - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListNames - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: ListNames - scan name: %v", ErrScanRow, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListNames - rows error: %v", ErrScanRow, err)
	}

	return names, nil
}

// Exists есть ли запись в справочнике
func (r *Repository) Exists(ctx context.Context, table, name string) (bool, error) {
	if !nameTables[table] {
		return false, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(squirrel.Eq{"name": name}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Exists - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: Exists - scan exists: %v", ErrScanRow, err)
	}

	return exists, nil
}

// GetOpportunityType получает тип возможности
func (r *Repository) GetOpportunityType(ctx context.Context, name string) (*domain.OpportunityType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "description", "default_appointment_type").
		From("opportunity_types").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpportunityType - build select query: %v", ErrBuildQuery, err)
	}

	var t domain.OpportunityType
	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Name, &t.Description, &t.DefaultAppointmentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpportunityType - scan row: %v", ErrScanRow, err)
	}

	return &t, nil
}

// SaveOpportunityType создает или обновляет тип возможности
func (r *Repository) SaveOpportunityType(ctx context.Context, t domain.OpportunityType) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("opportunity_types").
		Columns("name", "description", "default_appointment_type").
		Values(t.Name, t.Description, t.DefaultAppointmentType).
		Suffix("ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description," +
			" default_appointment_type = EXCLUDED.default_appointment_type").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveOpportunityType - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveOpportunityType - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetAppointmentSource получает источник встречи
func (r *Repository) GetAppointmentSource(ctx context.Context, name string) (*domain.AppointmentSource, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "disable_automated_notifications").
		From("appointment_sources").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAppointmentSource - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.AppointmentSource
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.Name, &s.DisableAutomatedNotifications)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAppointmentSource - scan row: %v", ErrScanRow, err)
	}

	return &s, nil
}

// SaveAppointmentSource создает или обновляет источник встречи
func (r *Repository) SaveAppointmentSource(ctx context.Context, s domain.AppointmentSource) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointment_sources").
		Columns("name", "disable_automated_notifications").
		Values(s.Name, s.DisableAutomatedNotifications).
		Suffix("ON CONFLICT (name) DO UPDATE SET disable_automated_notifications = EXCLUDED.disable_automated_notifications").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveAppointmentSource - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: SaveAppointmentSource - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) execInserted(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (bool, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %s - execute insert: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	return rowsAffected > 0, nil
}
