package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

const (
	table             = "events"
	participantsTable = "event_participants"
)

// Repository репозиторий событий календаря
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает событие вместе с участниками
func (r *Repository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("subject", "starts_on", "ends_on", "status", "event_category", "event_type", "send_reminder", "reference_name").
		Values(e.Subject, e.StartsOn, e.EndsOn, e.Status, e.EventCategory, e.EventType, e.SendReminder, e.ReferenceName).
		Suffix("RETURNING name, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.Name, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if len(e.Participants) == 0 {
		return e, nil
	}

	insert := psqlbuilder.Insert(participantsTable).Columns("event", "reference_doctype", "reference_docname")
	for _, p := range e.Participants {
		insert = insert.Values(e.Name, p.ReferenceDoctype, p.ReferenceDocname)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build participants insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert participants: %v", ErrExecQuery, err)
	}

	return e, nil
}

// UpdateTimes переносит событие на новое время
func (r *Repository) UpdateTimes(ctx context.Context, name string, startsOn time.Time, endsOn *time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("starts_on", startsOn).
		Set("ends_on", endsOn).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateTimes - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTimes - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTimes - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// GetByName получает событие с участниками
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"name", "subject", "starts_on", "ends_on", "status", "event_category", "event_type", "send_reminder",
		"reference_name", "created_at",
	).
		From(table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	var e domain.Event
	var endsOn sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.Name, &e.Subject, &e.StartsOn, &endsOn, &e.Status, &e.EventCategory, &e.EventType, &e.SendReminder,
		&e.ReferenceName, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan event: %v", ErrScanRow, err)
	}
	if endsOn.Valid {
		t := endsOn.Time
		e.EndsOn = &t
	}

	query, args, err = psqlbuilder.Select("reference_doctype", "reference_docname").
		From(participantsTable).
		Where(squirrel.Eq{"event": name}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build participants query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - execute participants query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.EventParticipant
		if err := rows.Scan(&p.ReferenceDoctype, &p.ReferenceDocname); err != nil {
			return nil, fmt.Errorf("%w: GetByName - scan participant: %v", ErrScanRow, err)
		}
		e.Participants = append(e.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByName - participants rows error: %v", ErrScanRow, err)
	}

	return &e, nil
}
