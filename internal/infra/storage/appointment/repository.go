package appointment

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

const table = "appointments"

var columns = []string{
	"name",
	"docstatus",
	"status",
	"appointment_type",
	"appointment_for",
	"party_name",
	"customer_name",
	"tax_id",
	"tax_cnic",
	"tax_strn",
	"address_display",
	"contact_display",
	"contact_email",
	"contact_mobile",
	"contact_mobile_2",
	"contact_phone",
	"contact_designation",
	"secondary_contact_display",
	"secondary_contact_mobile",
	"scheduled_dt",
	"end_dt",
	"scheduled_date",
	"scheduled_time",
	"scheduled_day_of_week",
	"appointment_duration",
	"sales_person",
	"opportunity",
	"previous_appointment",
	"previous_appointment_dt",
	"amended_from",
	"appointment_source",
	"is_closed",
	"is_missed",
	"is_checked_in",
	"check_in_dt",
	"check_in_user",
	"confirmation_dt",
	"calendar_event",
	"remarks",
	"voice_of_customer",
	"description",
	"applies_to_vehicle",
	"applies_to_serial_no",
	"owner",
	"created_at",
	"modified",
}

// Repository репозиторий для работы со встречами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория встреч
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает встречу, имя генерируется последовательностью в БД
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	values := writeMap(a)
	values["owner"] = a.Owner

	query, args, err := psqlbuilder.Insert(table).
		SetMap(values).
		Suffix("RETURNING name, created_at, modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.Name, &a.CreatedAt, &a.Modified)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return a, nil
}

// Update сохраняет все поля встречи
func (r *Repository) Update(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(a)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": a.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateStatus сохраняет только поля статуса встречи
func (r *Repository) UpdateStatus(ctx context.Context, a *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", a.Status).
		Set("is_closed", a.IsClosed).
		Set("is_missed", a.IsMissed).
		Set("is_checked_in", a.IsCheckedIn).
		Set("check_in_dt", a.CheckInDt).
		Set("check_in_user", a.CheckInUser).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": a.Name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// GetByName получает встречу по имени
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"name": name})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan appointment: %v", ErrScanRow, err)
	}

	return a, nil
}

// Delete удаляет встречу
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
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// GetInSlot подтверждённые встречи, пересекающиеся с интервалом [start, end)
// Перенесённые встречи не занимают слот
func (r *Repository) GetInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) ([]domain.SlotAppointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := slotQuery(psqlbuilder.Select("name", "sales_person"), start, end, filter).
		OrderBy("scheduled_dt", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetInSlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetInSlot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]domain.SlotAppointment, 0)
	for rows.Next() {
		var a domain.SlotAppointment
		if err := rows.Scan(&a.Name, &a.SalesPerson); err != nil {
			return nil, fmt.Errorf("%w: GetInSlot - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetInSlot - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// CountInSlot количество подтверждённых встреч, пересекающихся с интервалом
func (r *Repository) CountInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := slotQuery(psqlbuilder.Select("COUNT(*)"), start, end, filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountInSlot - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountInSlot - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// HasRescheduled есть ли подтверждённая или отменённая встреча, перенесённая с name
func (r *Repository) HasRescheduled(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "HasRescheduled", squirrel.And{
		squirrel.Eq{"previous_appointment": name},
		squirrel.Gt{"docstatus": domain.DocStatusDraft},
	})
}

// ExistsSubmittedForOpportunity есть ли подтверждённая или отменённая встреча по возможности
func (r *Repository) ExistsSubmittedForOpportunity(ctx context.Context, opportunity string) (bool, error) {
	return r.exists(ctx, "ExistsSubmittedForOpportunity", squirrel.And{
		squirrel.Eq{"opportunity": opportunity},
		squirrel.Gt{"docstatus": domain.DocStatusDraft},
	})
}

// MarkMissed переводит открытые встречи, запланированные не позже чем days дней назад, в статус Missed
func (r *Repository) MarkMissed(ctx context.Context, days int, today time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.AppointmentStatusMissed).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"docstatus": domain.DocStatusSubmitted, "status": domain.AppointmentStatusOpen}).
		Where(squirrel.LtOrEq{"scheduled_date": domain.DateOnly(today).AddDate(0, 0, -days)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkMissed - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// ListForReminder имена встреч, которым нужно отправить напоминание
// Встреча должна быть подтверждена не менее чем за RequiredMinutes до времени напоминаний,
// без уже запланированного напоминания и без напоминания, отправленного в день напоминаний
func (r *Repository) ListForReminder(ctx context.Context, q domain.ReminderQuery) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("a.name").
		From(table+" a").
		LeftJoin(
			"notification_counts n ON n.reference_doctype = ? AND n.reference_name = a.name"+
				" AND n.notification_type = ? AND n.medium = ?",
			domain.DoctypeAppointment, domain.NotificationAppointmentReminder, domain.NotificationMediumSMS,
		).
		Where(squirrel.Eq{"a.docstatus": domain.DocStatusSubmitted, "a.status": domain.AppointmentStatusOpen}).
		Where(squirrel.Eq{"a.scheduled_date": q.AppointmentDate}).
		Where("a.scheduled_dt > ?", q.ReminderDt).
		Where("a.scheduled_dt > ?", q.Now).
		Where("EXTRACT(EPOCH FROM (?::timestamp - a.confirmation_dt)) / 60 >= ?", q.ReminderDt, q.RequiredMinutes).
		Where("n.last_scheduled_dt IS NULL").
		Where("(n.last_sent_dt IS NULL OR n.last_sent_dt::date <> ?)", q.ReminderDate).
		OrderBy("a.scheduled_dt", "a.name")

	if len(q.AppointmentNames) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"a.name": q.AppointmentNames})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForReminder - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForReminder - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: ListForReminder - scan name: %v", ErrScanRow, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListForReminder - rows error: %v", ErrScanRow, err)
	}

	return names, nil
}

// Events встречи (кроме отменённых) с началом в интервале [start, end] для календаря
func (r *Repository) Events(ctx context.Context, start, end time.Time) ([]domain.AppointmentEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "customer_name", "status", "scheduled_dt", "COALESCE(end_dt, scheduled_dt)").
		From(table).
		Where(squirrel.NotEq{"scheduled_dt": nil}).
		Where(squirrel.GtOrEq{"scheduled_dt": start}).
		Where(squirrel.LtOrEq{"scheduled_dt": end}).
		Where(squirrel.Lt{"docstatus": domain.DocStatusCancelled}).
		OrderBy("scheduled_dt", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Events - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Events - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.AppointmentEvent, 0)
	for rows.Next() {
		var e domain.AppointmentEvent
		if err := rows.Scan(&e.Name, &e.CustomerName, &e.Status, &e.ScheduledDt, &e.EndDt); err != nil {
			return nil, fmt.Errorf("%w: Events - scan row: %v", ErrScanRow, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Events - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

func (r *Repository) exists(ctx context.Context, op string, where squirrel.Sqlizer) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(where).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %s - scan exists: %v", ErrScanRow, op, err)
	}

	return exists, nil
}

func slotQuery(selectBuilder squirrel.SelectBuilder, start, end time.Time, filter domain.SlotFilter) squirrel.SelectBuilder {
	selectBuilder = selectBuilder.
		From(table).
		Where(squirrel.Eq{"docstatus": domain.DocStatusSubmitted}).
		Where(squirrel.NotEq{"status": domain.AppointmentStatusRescheduled}).
		Where(squirrel.Gt{"end_dt": start}).
		Where(squirrel.Lt{"scheduled_dt": end})

	if filter.AppointmentType != "" {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"appointment_type": filter.AppointmentType})
	}
	if filter.SalesPerson != "" {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"sales_person": filter.SalesPerson})
	}
	if filter.Exclude != "" {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"name": filter.Exclude})
	}
	return selectBuilder
}

func writeMap(a *domain.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"docstatus":                 a.DocStatus,
		"status":                    a.Status,
		"appointment_type":          a.AppointmentType,
		"appointment_for":           a.AppointmentFor,
		"party_name":                a.PartyName,
		"customer_name":             a.CustomerName,
		"tax_id":                    a.TaxID,
		"tax_cnic":                  a.TaxCNIC,
		"tax_strn":                  a.TaxSTRN,
		"address_display":           a.AddressDisplay,
		"contact_display":           a.ContactDisplay,
		"contact_email":             a.ContactEmail,
		"contact_mobile":            a.ContactMobile,
		"contact_mobile_2":          a.ContactMobile2,
		"contact_phone":             a.ContactPhone,
		"contact_designation":       a.ContactDesignation,
		"secondary_contact_display": a.SecondaryContactDisplay,
		"secondary_contact_mobile":  a.SecondaryContactMobile,
		"scheduled_dt":              a.ScheduledDt,
		"end_dt":                    a.EndDt,
		"scheduled_date":            a.ScheduledDate,
		"scheduled_time":            a.ScheduledTime,
		"scheduled_day_of_week":     a.ScheduledDayOfWeek,
		"appointment_duration":      a.AppointmentDuration,
		"sales_person":              a.SalesPerson,
		"opportunity":               a.Opportunity,
		"previous_appointment":      a.PreviousAppointment,
		"previous_appointment_dt":   a.PreviousAppointmentDt,
		"amended_from":              a.AmendedFrom,
		"appointment_source":        a.AppointmentSource,
		"is_closed":                 a.IsClosed,
		"is_missed":                 a.IsMissed,
		"is_checked_in":             a.IsCheckedIn,
		"check_in_dt":               a.CheckInDt,
		"check_in_user":             a.CheckInUser,
		"confirmation_dt":           a.ConfirmationDt,
		"calendar_event":            a.CalendarEvent,
		"remarks":                   a.Remarks,
		"voice_of_customer":         a.VoiceOfCustomer,
		"description":               a.Description,
		"applies_to_vehicle":        a.AppliesToVehicle,
		"applies_to_serial_no":      a.AppliesToSerialNo,
	}
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var scheduledDt, endDt, scheduledDate, previousDt, checkInDt, confirmationDt sql.NullTime

	err := row.Scan(
		&a.Name,
		&a.DocStatus,
		&a.Status,
		&a.AppointmentType,
		&a.AppointmentFor,
		&a.PartyName,
		&a.CustomerName,
		&a.TaxID,
		&a.TaxCNIC,
		&a.TaxSTRN,
		&a.AddressDisplay,
		&a.ContactDisplay,
		&a.ContactEmail,
		&a.ContactMobile,
		&a.ContactMobile2,
		&a.ContactPhone,
		&a.ContactDesignation,
		&a.SecondaryContactDisplay,
		&a.SecondaryContactMobile,
		&scheduledDt,
		&endDt,
		&scheduledDate,
		&a.ScheduledTime,
		&a.ScheduledDayOfWeek,
		&a.AppointmentDuration,
		&a.SalesPerson,
		&a.Opportunity,
		&a.PreviousAppointment,
		&previousDt,
		&a.AmendedFrom,
		&a.AppointmentSource,
		&a.IsClosed,
		&a.IsMissed,
		&a.IsCheckedIn,
		&checkInDt,
		&a.CheckInUser,
		&confirmationDt,
		&a.CalendarEvent,
		&a.Remarks,
		&a.VoiceOfCustomer,
		&a.Description,
		&a.AppliesToVehicle,
		&a.AppliesToSerialNo,
		&a.Owner,
		&a.CreatedAt,
		&a.Modified,
	)
	if err != nil {
		return nil, err
	}

	a.ScheduledDt = nullTime(scheduledDt)
	a.EndDt = nullTime(endDt)
	a.ScheduledDate = nullTime(scheduledDate)
	a.PreviousAppointmentDt = nullTime(previousDt)
	a.CheckInDt = nullTime(checkInDt)
	a.ConfirmationDt = nullTime(confirmationDt)
	return &a, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
