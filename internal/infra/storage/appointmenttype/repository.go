package appointmenttype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

const (
	table          = "appointment_types"
	timeslotsTable = "appointment_type_timeslots"
	holidaysTable  = "appointment_type_holidays"
)

var columns = []string{
	"name",
	"appointment_duration",
	"number_of_agents",
	"advance_booking_days",
	"validate_past_timeslot",
	"validate_availability",
	"validate_sales_person_availability",
	"sales_person_mandatory",
	"create_calendar_event",
	"email_reminders",
	"sales_persons",
	"modified",
}

// Repository репозиторий для работы с типами встреч и их расписанием
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория типов встреч
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает тип встречи вместе с расписанием и выходными
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, t *domain.AppointmentType) (*domain.AppointmentType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	values := writeMap(t)
	values["name"] = t.Name

	query, args, err := psqlbuilder.Insert(table).
		SetMap(values).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Modified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateAppointmentType
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if err := r.insertChildren(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Update сохраняет тип встречи, расписание и выходные заменяются целиком
func (r *Repository) Update(ctx context.Context, t *domain.AppointmentType) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(t)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": t.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&t.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAppointmentTypeNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	for _, child := range []string{timeslotsTable, holidaysTable} {
		query, args, err := psqlbuilder.Delete(child).
			Where(squirrel.Eq{"appointment_type": t.Name}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: Update - build delete query: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: Update - delete %s: %v", ErrExecQuery, child, err)
		}
	}

	return r.insertChildren(ctx, t)
}

// GetByName получает тип встречи с расписанием и выходными
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.AppointmentType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - build select query: %v", ErrBuildQuery, err)
	}

	var t domain.AppointmentType
	var salesPersons pq.StringArray
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&t.Name,
		&t.AppointmentDuration,
		&t.NumberOfAgents,
		&t.AdvanceBookingDays,
		&t.ValidatePastTimeslot,
		&t.ValidateAvailability,
		&t.ValidateSalesPersonAvailability,
		&t.SalesPersonMandatory,
		&t.CreateCalendarEvent,
		&t.EmailReminders,
		&salesPersons,
		&t.Modified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan appointment type: %v", ErrScanRow, err)
	}
	t.SalesPersons = []string(salesPersons)

	if t.Timeslots, err = r.getTimeslots(ctx, name); err != nil {
		return nil, err
	}
	if t.Holidays, err = r.getHolidays(ctx, name); err != nil {
		return nil, err
	}

	return &t, nil
}

// ListNames возвращает имена всех типов встреч
func (r *Repository) ListNames(ctx context.Context) ([]string, error) {
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

// Delete удаляет тип встречи (расписание удаляется каскадно)
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
		return ErrAppointmentTypeNotFound
	}

	return nil
}

func (r *Repository) insertChildren(ctx context.Context, t *domain.AppointmentType) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if len(t.Timeslots) > 0 {
		insert := psqlbuilder.Insert(timeslotsTable).
			Columns("appointment_type", "day_of_week", "from_time", "to_time")
		for _, slot := range t.Timeslots {
			insert = insert.Values(t.Name, int(slot.DayOfWeek), slot.FromTime, slot.ToTime)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("%w: insertChildren - build timeslots insert: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insertChildren - insert timeslots: %v", ErrExecQuery, err)
		}
	}

	if len(t.Holidays) > 0 {
		insert := psqlbuilder.Insert(holidaysTable).
			Columns("appointment_type", "holiday_date", "description")
		for _, h := range t.Holidays {
			insert = insert.Values(t.Name, domain.DateOnly(h.Date), h.Description)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("%w: insertChildren - build holidays insert: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insertChildren - insert holidays: %v", ErrExecQuery, err)
		}
	}

	return nil
}

func (r *Repository) getTimeslots(ctx context.Context, name string) ([]domain.AppointmentTypeTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("day_of_week", "from_time", "to_time").
		From(timeslotsTable).
		Where(squirrel.Eq{"appointment_type": name}).
		OrderBy("day_of_week", "from_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getTimeslots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getTimeslots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]domain.AppointmentTypeTimeslot, 0)
	for rows.Next() {
		var day int
		var from, to types.TimeString
		if err := rows.Scan(&day, &from, &to); err != nil {
			return nil, fmt.Errorf("%w: getTimeslots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, domain.AppointmentTypeTimeslot{
			DayOfWeek: time.Weekday(day),
			FromTime:  from,
			ToTime:    to,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getTimeslots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

func (r *Repository) getHolidays(ctx context.Context, name string) ([]domain.Holiday, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("holiday_date", "description").
		From(holidaysTable).
		Where(squirrel.Eq{"appointment_type": name}).
		OrderBy("holiday_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getHolidays - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getHolidays - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	holidays := make([]domain.Holiday, 0)
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.Date, &h.Description); err != nil {
			return nil, fmt.Errorf("%w: getHolidays - scan row: %v", ErrScanRow, err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getHolidays - rows error: %v", ErrScanRow, err)
	}

	return holidays, nil
}

func writeMap(t *domain.AppointmentType) map[string]interface{} {
	salesPersons := t.SalesPersons
	if salesPersons == nil {
		salesPersons = []string{}
	}
	return map[string]interface{}{
		"appointment_duration":               t.AppointmentDuration,
		"number_of_agents":                   t.NumberOfAgents,
		"advance_booking_days":               t.AdvanceBookingDays,
		"validate_past_timeslot":             t.ValidatePastTimeslot,
		"validate_availability":              t.ValidateAvailability,
		"validate_sales_person_availability": t.ValidateSalesPersonAvailability,
		"sales_person_mandatory":             t.SalesPersonMandatory,
		"create_calendar_event":              t.CreateCalendarEvent,
		"email_reminders":                    t.EmailReminders,
		"sales_persons":                      pq.Array(salesPersons),
	}
}
