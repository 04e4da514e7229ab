package feedback

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

const table = "customer_feedback"

var columns = []string{
	"name",
	"reference_doctype",
	"reference_name",
	"feedback_from",
	"party_name",
	"customer_name",
	"title",
	"status",
	"contact_date",
	"contact_time",
	"contact_remarks",
	"feedback_date",
	"feedback_time",
	"customer_feedback",
	"modified",
}

// Repository репозиторий отзывов клиентов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отзывов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает отзыв, имя генерируется последовательностью в БД
func (r *Repository) Create(ctx context.Context, f *domain.CustomerFeedback) (*domain.CustomerFeedback, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	values := writeMap(f)
	values["reference_doctype"] = f.ReferenceDoctype
	values["reference_name"] = f.ReferenceName

	query, args, err := psqlbuilder.Insert(table).
		SetMap(values).
		Suffix("RETURNING name, modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&f.Name, &f.Modified); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return f, nil
}

// Update сохраняет отзыв
func (r *Repository) Update(ctx context.Context, f *domain.CustomerFeedback) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(f)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": f.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&f.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFeedbackNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByName получает отзыв по имени
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.CustomerFeedback, error) {
	return r.getOne(ctx, "GetByName", squirrel.Eq{"name": name})
}

// GetByReference получает отзыв по документу, к которому он относится
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByReference(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, error) {
	return r.getOne(ctx, "GetByReference", squirrel.Eq{"reference_doctype": doctype, "reference_name": name})
}

// SetFeedbackFromWhereEmpty проставляет тип стороны отзывам, у которых он не заполнен
func (r *Repository) SetFeedbackFromWhereEmpty(ctx context.Context, partyType string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("feedback_from", partyType).
		Where(squirrel.Eq{"feedback_from": ""}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SetFeedbackFromWhereEmpty - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: SetFeedbackFromWhereEmpty - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: SetFeedbackFromWhereEmpty - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.CustomerFeedback, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(table).Where(where)
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var f domain.CustomerFeedback
	var contactDate, feedbackDate sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&f.Name,
		&f.ReferenceDoctype,
		&f.ReferenceName,
		&f.FeedbackFrom,
		&f.PartyName,
		&f.CustomerName,
		&f.Title,
		&f.Status,
		&contactDate,
		&f.ContactTime,
		&f.ContactRemarks,
		&feedbackDate,
		&f.FeedbackTime,
		&f.CustomerFeedback,
		&f.Modified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan feedback: %v", ErrScanRow, op, err)
	}

	f.ContactDate = nullTime(contactDate)
	f.FeedbackDate = nullTime(feedbackDate)
	return &f, nil
}

func writeMap(f *domain.CustomerFeedback) map[string]interface{} {
	return map[string]interface{}{
		"feedback_from":     f.FeedbackFrom,
		"party_name":        f.PartyName,
		"customer_name":     f.CustomerName,
		"title":             f.Title,
		"status":            f.Status,
		"contact_date":      f.ContactDate,
		"contact_time":      f.ContactTime,
		"contact_remarks":   f.ContactRemarks,
		"feedback_date":     f.FeedbackDate,
		"feedback_time":     f.FeedbackTime,
		"customer_feedback": f.CustomerFeedback,
	}
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
