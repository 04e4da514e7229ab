package notification

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
	table       = "notifications"
	countsTable = "notification_counts"
)

var columns = []string{
	"id",
	"reference_doctype",
	"reference_name",
	"notification_type",
	"medium",
	"receiver",
	"party",
	"status",
	"scheduled_at",
	"sent_at",
	"error",
	"created_at",
}

// Repository репозиторий очереди уведомлений (outbox) и счётчиков по документам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория уведомлений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Enqueue ставит уведомление в очередь и отмечает время планирования в счётчике документа
func (r *Repository) Enqueue(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	medium := n.Medium
	if medium == "" {
		medium = domain.NotificationMediumSMS
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("reference_doctype", "reference_name", "notification_type", "medium", "receiver", "party", "status", "scheduled_at").
		Values(n.ReferenceDoctype, n.ReferenceName, n.NotificationType, medium, n.Receiver, n.Party,
			domain.NotificationStatusQueued, n.ScheduledAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Enqueue - execute insert: %v", ErrExecQuery, err)
	}
	n.Medium = medium
	n.Status = domain.NotificationStatusQueued

	query, args, err = psqlbuilder.Insert(countsTable).
		Columns("reference_doctype", "reference_name", "notification_type", "medium", "last_scheduled_dt").
		Values(n.ReferenceDoctype, n.ReferenceName, n.NotificationType, medium, n.ScheduledAt).
		Suffix("ON CONFLICT (reference_doctype, reference_name, notification_type, medium)" +
			" DO UPDATE SET last_scheduled_dt = EXCLUDED.last_scheduled_dt").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Enqueue - build counts upsert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Enqueue - upsert counts: %v", ErrExecQuery, err)
	}

	return n, nil
}

// ListQueued уведомления в очереди, время отправки которых наступило
func (r *Repository) ListQueued(ctx context.Context, now time.Time, limit uint64) ([]domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"status": domain.NotificationStatusQueued}).
		Where(squirrel.LtOrEq{"scheduled_at": now}).
		OrderBy("scheduled_at", "id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListQueued - build select query: %v", ErrBuildQuery, err)
	}

	return r.list(ctx, executor, "ListQueued", query, args)
}

// ListByReference уведомления документа, новые первыми
func (r *Repository) ListByReference(ctx context.Context, doctype, name string) ([]domain.Notification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"reference_doctype": doctype, "reference_name": name}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReference - build select query: %v", ErrBuildQuery, err)
	}

	return r.list(ctx, executor, "ListByReference", query, args)
}

// MarkSent отмечает уведомление отправленным
// Счётчик документа увеличивается, отметка о запланированной отправке снимается
func (r *Repository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.NotificationStatusSent).
		Set("sent_at", sentAt).
		Set("error", "").
		Where(squirrel.Eq{"id": id, "status": domain.NotificationStatusQueued}).
		Suffix("RETURNING reference_doctype, reference_name, notification_type, medium").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - build update query: %v", ErrBuildQuery, err)
	}

	var c domain.NotificationCount
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ReferenceDoctype, &c.ReferenceName, &c.NotificationType, &c.Medium)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: MarkSent - execute update: %v", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Insert(countsTable).
		Columns("reference_doctype", "reference_name", "notification_type", "medium", "count", "last_sent_dt").
		Values(c.ReferenceDoctype, c.ReferenceName, c.NotificationType, c.Medium, 1, sentAt).
		Suffix("ON CONFLICT (reference_doctype, reference_name, notification_type, medium)" +
			" DO UPDATE SET count = notification_counts.count + 1, last_sent_dt = EXCLUDED.last_sent_dt, last_scheduled_dt = NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkSent - build counts upsert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkSent - upsert counts: %v", ErrExecQuery, err)
	}

	return nil
}

// MarkFailed отмечает уведомление неотправленным, запланированная отправка в счётчике снимается
func (r *Repository) MarkFailed(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.NotificationStatusFailed).
		Set("error", reason).
		Where(squirrel.Eq{"id": id, "status": domain.NotificationStatusQueued}).
		Suffix("RETURNING reference_doctype, reference_name, notification_type, medium").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - build update query: %v", ErrBuildQuery, err)
	}

	var c domain.NotificationCount
	err = executor.QueryRowContext(ctx, query, args...).Scan(&c.ReferenceDoctype, &c.ReferenceName, &c.NotificationType, &c.Medium)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: MarkFailed - execute update: %v", ErrExecQuery, err)
	}

	return r.clearScheduled(ctx, "MarkFailed", c.ReferenceDoctype, c.ReferenceName, c.NotificationType)
}

// CancelQueued снимает с очереди уведомления документа заданного типа
func (r *Repository) CancelQueued(ctx context.Context, doctype, name string, notificationType domain.NotificationType) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.NotificationStatusFailed).
		Set("error", "cancelled").
		Where(squirrel.Eq{
			"reference_doctype": doctype,
			"reference_name":    name,
			"notification_type": notificationType,
			"status":            domain.NotificationStatusQueued,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelQueued - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelQueued - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelQueued - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	return rowsAffected, r.clearScheduled(ctx, "CancelQueued", doctype, name, notificationType)
}

// Counts счётчики уведомлений документа по типам
func (r *Repository) Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"reference_doctype",
		"reference_name",
		"notification_type",
		"medium",
		"count",
		"last_scheduled_dt",
		"last_sent_dt",
	).
		From(countsTable).
		Where(squirrel.Eq{"reference_doctype": doctype, "reference_name": name}).
		OrderBy("notification_type", "medium").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Counts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Counts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make([]domain.NotificationCount, 0)
	for rows.Next() {
		var c domain.NotificationCount
		var lastScheduled, lastSent sql.NullTime
		if err := rows.Scan(&c.ReferenceDoctype, &c.ReferenceName, &c.NotificationType, &c.Medium, &c.Count,
			&lastScheduled, &lastSent); err != nil {
			return nil, fmt.Errorf("%w: Counts - scan row: %v", ErrScanRow, err)
		}
		c.LastScheduledDt = nullTime(lastScheduled)
		c.LastSentDt = nullTime(lastSent)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Counts - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

func (r *Repository) clearScheduled(ctx context.Context, op, doctype, name string, notificationType domain.NotificationType) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(countsTable).
		Set("last_scheduled_dt", nil).
		Where(squirrel.Eq{
			"reference_doctype": doctype,
			"reference_name":    name,
			"notification_type": notificationType,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build counts update: %v", ErrBuildQuery, op, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - update counts: %v", ErrExecQuery, op, err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]domain.Notification, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var sentAt sql.NullTime
		err := rows.Scan(
			&n.ID,
			&n.ReferenceDoctype,
			&n.ReferenceName,
			&n.NotificationType,
			&n.Medium,
			&n.Receiver,
			&n.Party,
			&n.Status,
			&n.ScheduledAt,
			&sentAt,
			&n.Error,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		n.SentAt = nullTime(sentAt)
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return result, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
