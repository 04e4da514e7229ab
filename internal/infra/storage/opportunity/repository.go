package opportunity

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
)

const (
	table          = "opportunities"
	followUpsTable = "opportunity_follow_ups"
)

var columns = []string{
	"name",
	"opportunity_from",
	"party_name",
	"customer_name",
	"title",
	"status",
	"opportunity_type",
	"source",
	"campaign",
	"territory",
	"sales_person",
	"sales_person_mobile_no",
	"sales_person_email",
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
	"transaction_date",
	"next_follow_up",
	"lost_reasons",
	"order_lost_reason",
	"applies_to_vehicle",
	"applies_to_serial_no",
	"owner",
	"created_at",
	"modified",
}

// Repository репозиторий для работы с возможностями (opportunities) и графиком их follow up
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория возможностей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает возможность вместе со строками графика follow up
// Вызывать внутри транзакции, чтобы запись и строки графика сохранялись атомарно
func (r *Repository) Create(ctx context.Context, opp *domain.Opportunity) (*domain.Opportunity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	values := writeMap(opp)
	values["owner"] = opp.Owner
	if !opp.TransactionDate.IsZero() {
		values["transaction_date"] = opp.TransactionDate
	}

	query, args, err := psqlbuilder.Insert(table).
		SetMap(values).
		Suffix("RETURNING name, transaction_date, created_at, modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&opp.Name, &opp.TransactionDate, &opp.CreatedAt, &opp.Modified)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if err := r.insertFollowUps(ctx, opp); err != nil {
		return nil, err
	}

	return opp, nil
}

// Update сохраняет поля возможности и полностью перезаписывает график follow up
func (r *Repository) Update(ctx context.Context, opp *domain.Opportunity) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(opp)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": opp.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&opp.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOpportunityNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	deleteQuery, deleteArgs, err := psqlbuilder.Delete(followUpsTable).
		Where(squirrel.Eq{"opportunity": opp.Name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build delete follow ups query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: Update - delete follow ups: %v", ErrExecQuery, err)
	}

	return r.insertFollowUps(ctx, opp)
}

// UpdateStatus обновляет только статус возможности
func (r *Repository) UpdateStatus(ctx context.Context, name string, status domain.OpportunityStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", status).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": name}).
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
		return ErrOpportunityNotFound
	}

	return nil
}

// GetByName получает возможность с графиком follow up
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.Opportunity, error) {
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

	opp, err := scanOpportunity(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOpportunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByName - scan opportunity: %v", ErrScanRow, err)
	}

	followUps, err := r.getFollowUps(ctx, name)
	if err != nil {
		return nil, err
	}
	opp.ContactSchedule = followUps

	return opp, nil
}

// Delete удаляет возможность (строки графика удаляются каскадно)
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
		return ErrOpportunityNotFound
	}

	return nil
}

// ListStaleForAutoLost имена возможностей в статусах Open/Replied/Quotation, не изменявшихся с modifiedBefore
func (r *Repository) ListStaleForAutoLost(ctx context.Context, modifiedBefore time.Time) ([]string, error) {
	statuses := make([]string, len(domain.AutoLostStatuses))
	for i, s := range domain.AutoLostStatuses {
		statuses[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select("name").
		From(table).
		Where(squirrel.Eq{"status": statuses}).
		Where(squirrel.Lt{"modified": modifiedBefore}).
		OrderBy("modified", "name")

	return r.selectNames(ctx, "ListStaleForAutoLost", selectBuilder)
}

// PartyStatusFacts факты о возможностях лида, определяющие его статус
func (r *Repository) PartyStatusFacts(ctx context.Context, partyType, partyName string) (domain.LeadStatusFacts, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"COALESCE(BOOL_OR(status <> 'Lost'), FALSE)",
		"COALESCE(BOOL_OR(status = 'Lost'), FALSE)",
		"COALESCE(BOOL_OR(status = 'Converted'), FALSE)",
	).
		From(table).
		Where(squirrel.Eq{"opportunity_from": partyType, "party_name": partyName}).
		ToSql()
	if err != nil {
		return domain.LeadStatusFacts{}, fmt.Errorf("%w: PartyStatusFacts - build select query: %v", ErrBuildQuery, err)
	}

	var facts domain.LeadStatusFacts
	err = executor.QueryRowContext(ctx, query, args...).Scan(&facts.HasOpportunity, &facts.HasLostOpportunity, &facts.HasConverted)
	if err != nil {
		return domain.LeadStatusFacts{}, fmt.Errorf("%w: PartyStatusFacts - scan facts: %v", ErrScanRow, err)
	}

	return facts, nil
}

// FollowUpEvents запланированные follow up в интервале дат для календаря
func (r *Repository) FollowUpEvents(ctx context.Context, start, end time.Time) ([]domain.OpportunityFollowUpEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("o.name", "o.customer_name", "o.status", "f.schedule_date").
		From(followUpsTable + " f").
		Join(table + " o ON o.name = f.opportunity").
		Where(squirrel.GtOrEq{"f.schedule_date": start}).
		Where(squirrel.LtOrEq{"f.schedule_date": end}).
		OrderBy("f.schedule_date", "o.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FollowUpEvents - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FollowUpEvents - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.OpportunityFollowUpEvent, 0)
	for rows.Next() {
		var e domain.OpportunityFollowUpEvent
		if err := rows.Scan(&e.Name, &e.CustomerName, &e.Status, &e.ScheduleDate); err != nil {
			return nil, fmt.Errorf("%w: FollowUpEvents - scan row: %v", ErrScanRow, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FollowUpEvents - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// CountByDateForSalesPerson количество возможностей продавца по дням начиная с since
func (r *Repository) CountByDateForSalesPerson(ctx context.Context, salesPerson string, since time.Time) ([]domain.TimelinePoint, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("transaction_date", "COUNT(*)").
		From(table).
		Where(squirrel.Eq{"sales_person": salesPerson}).
		Where(squirrel.GtOrEq{"transaction_date": since}).
		GroupBy("transaction_date").
		OrderBy("transaction_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountByDateForSalesPerson - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByDateForSalesPerson - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	points := make([]domain.TimelinePoint, 0)
	for rows.Next() {
		var p domain.TimelinePoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, fmt.Errorf("%w: CountByDateForSalesPerson - scan row: %v", ErrScanRow, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByDateForSalesPerson - rows error: %v", ErrScanRow, err)
	}

	return points, nil
}

func (r *Repository) selectNames(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]string, error) {
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

func (r *Repository) insertFollowUps(ctx context.Context, opp *domain.Opportunity) error {
	if len(opp.ContactSchedule) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(followUpsTable).
		Columns("opportunity", "idx", "schedule_date", "contact_date", "to_discuss")
	for _, f := range opp.ContactSchedule {
		insertBuilder = insertBuilder.Values(opp.Name, f.Idx, f.ScheduleDate, f.ContactDate, f.ToDiscuss)
	}

	query, args, err := insertBuilder.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertFollowUps - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: insertFollowUps - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for i := 0; rows.Next() && i < len(opp.ContactSchedule); i++ {
		if err := rows.Scan(&opp.ContactSchedule[i].ID); err != nil {
			return fmt.Errorf("%w: insertFollowUps - scan id: %v", ErrScanRow, err)
		}
		opp.ContactSchedule[i].IsNew = false
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: insertFollowUps - rows error: %v", ErrScanRow, err)
	}

	return nil
}

func (r *Repository) getFollowUps(ctx context.Context, name string) ([]domain.FollowUp, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "idx", "schedule_date", "contact_date", "to_discuss").
		From(followUpsTable).
		Where(squirrel.Eq{"opportunity": name}).
		OrderBy("idx").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getFollowUps - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getFollowUps - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	followUps := make([]domain.FollowUp, 0)
	for rows.Next() {
		var f domain.FollowUp
		var scheduleDate, contactDate sql.NullTime
		if err := rows.Scan(&f.ID, &f.Idx, &scheduleDate, &contactDate, &f.ToDiscuss); err != nil {
			return nil, fmt.Errorf("%w: getFollowUps - scan row: %v", ErrScanRow, err)
		}
		f.ScheduleDate = nullTime(scheduleDate)
		f.ContactDate = nullTime(contactDate)
		followUps = append(followUps, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getFollowUps - rows error: %v", ErrScanRow, err)
	}

	return followUps, nil
}

func writeMap(o *domain.Opportunity) map[string]interface{} {
	return map[string]interface{}{
		"opportunity_from":       o.OpportunityFrom,
		"party_name":             o.PartyName,
		"customer_name":          o.CustomerName,
		"title":                  o.Title,
		"status":                 o.Status,
		"opportunity_type":       o.OpportunityType,
		"source":                 o.Source,
		"campaign":               o.Campaign,
		"territory":              o.Territory,
		"sales_person":           o.SalesPerson,
		"sales_person_mobile_no": o.SalesPersonMobileNo,
		"sales_person_email":     o.SalesPersonEmail,
		"tax_id":                 o.TaxID,
		"tax_cnic":               o.TaxCNIC,
		"tax_strn":               o.TaxSTRN,
		"address_display":        o.AddressDisplay,
		"contact_display":        o.ContactDisplay,
		"contact_email":          o.ContactEmail,
		"contact_mobile":         o.ContactMobile,
		"contact_mobile_2":       o.ContactMobile2,
		"contact_phone":          o.ContactPhone,
		"contact_designation":    o.ContactDesignation,
		"next_follow_up":         o.NextFollowUp,
		"lost_reasons":           pq.Array(nonNil(o.LostReasons)),
		"order_lost_reason":      o.OrderLostReason,
		"applies_to_vehicle":     o.AppliesToVehicle,
		"applies_to_serial_no":   o.AppliesToSerialNo,
	}
}

func scanOpportunity(row rowScanner) (*domain.Opportunity, error) {
	var o domain.Opportunity
	var nextFollowUp sql.NullTime
	var lostReasons pq.StringArray

	err := row.Scan(
		&o.Name,
		&o.OpportunityFrom,
		&o.PartyName,
		&o.CustomerName,
		&o.Title,
		&o.Status,
		&o.OpportunityType,
		&o.Source,
		&o.Campaign,
		&o.Territory,
		&o.SalesPerson,
		&o.SalesPersonMobileNo,
		&o.SalesPersonEmail,
		&o.TaxID,
		&o.TaxCNIC,
		&o.TaxSTRN,
		&o.AddressDisplay,
		&o.ContactDisplay,
		&o.ContactEmail,
		&o.ContactMobile,
		&o.ContactMobile2,
		&o.ContactPhone,
		&o.ContactDesignation,
		&o.TransactionDate,
		&nextFollowUp,
		&lostReasons,
		&o.OrderLostReason,
		&o.AppliesToVehicle,
		&o.AppliesToSerialNo,
		&o.Owner,
		&o.CreatedAt,
		&o.Modified,
	)
	if err != nil {
		return nil, err
	}

	o.NextFollowUp = nullTime(nextFollowUp)
	if len(lostReasons) > 0 {
		o.LostReasons = []string(lostReasons)
	}
	return &o, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
