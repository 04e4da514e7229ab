package lead

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

const table = "leads"

var columns = []string{
	"name",
	"lead_name",
	"company_name",
	"organization_lead",
	"salutation",
	"gender",
	"designation",
	"email_id",
	"mobile_no",
	"mobile_no_2",
	"phone",
	"tax_id",
	"tax_cnic",
	"tax_strn",
	"address_line1",
	"address_line2",
	"city",
	"state",
	"country",
	"territory",
	"campaign",
	"sales_person",
	"source",
	"status",
	"image",
	"notes",
	"docstatus",
	"created_at",
	"modified",
}

// Repository репозиторий для работы с лидами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория лидов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает лид, имя генерируется последовательностью в БД
func (r *Repository) Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		SetMap(writeMap(lead)).
		Suffix("RETURNING name, created_at, modified").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&lead.Name, &lead.CreatedAt, &lead.Modified)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return lead, nil
}

// Update сохраняет все поля лида
func (r *Repository) Update(ctx context.Context, lead *domain.Lead) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(writeMap(lead)).
		Set("modified", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"name": lead.Name}).
		Suffix("RETURNING modified").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&lead.Modified)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrLeadNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// UpdateStatus обновляет только статус лида
func (r *Repository) UpdateStatus(ctx context.Context, name string, status domain.LeadStatus) error {
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
		return ErrLeadNotFound
	}

	return nil
}

// RenameStatus переводит все лиды из одного статуса в другой (для патчей данных)
func (r *Repository) RenameStatus(ctx context.Context, from, to string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", to).
		Where(squirrel.Eq{"status": from}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: RenameStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: RenameStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: RenameStatus - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// GetByName получает лид по имени
// В транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByName(ctx context.Context, name string) (*domain.Lead, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"name": name})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.getOne(ctx, "GetByName", selectBuilder)
}

// FindByEmail ищет первый лид с указанным email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"email_id": email}).
		OrderBy("created_at").
		Limit(1)

	return r.getOne(ctx, "FindByEmail", selectBuilder)
}

// FindByMobile ищет первый лид с указанным основным мобильным номером
func (r *Repository) FindByMobile(ctx context.Context, mobile string) (*domain.Lead, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"mobile_no": mobile}).
		OrderBy("created_at").
		Limit(1)

	return r.getOne(ctx, "FindByMobile", selectBuilder)
}

// FindByPhoneSuffix ищет лид, у которого телефон или мобильный оканчивается на number
func (r *Repository) FindByPhoneSuffix(ctx context.Context, number string) (*domain.Lead, error) {
	pattern := "%" + number
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Or{
			squirrel.Like{"phone": pattern},
			squirrel.Like{"mobile_no": pattern},
		}).
		OrderBy("created_at").
		Limit(1)

	return r.getOne(ctx, "FindByPhoneSuffix", selectBuilder)
}

// DuplicateEmails возвращает имена других лидов с тем же email
func (r *Repository) DuplicateEmails(ctx context.Context, email, exclude string) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("name").
		From(table).
		Where(squirrel.Eq{"email_id": email}).
		OrderBy("name")
	if exclude != "" {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"name": exclude})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: DuplicateEmails - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: DuplicateEmails - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: DuplicateEmails - scan name: %v", ErrScanRow, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: DuplicateEmails - rows error: %v", ErrScanRow, err)
	}

	return names, nil
}

// Search поиск лидов для автодополнения
// Сортировка по позиции подстроки в name, lead_name, company_name, затем по modified
func (r *Repository) Search(ctx context.Context, txt string, start, pageLen int) ([]domain.LeadSearchResult, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	// позиция ищется по тексту без символов шаблона
	pos := strings.ReplaceAll(txt, "%", "")

	selectBuilder := psqlbuilder.Select("name", "lead_name", "company_name").
		From(table).
		Where(squirrel.Lt{"docstatus": domain.DocStatusCancelled}).
		Where(squirrel.Or{
			psqlbuilder.ILike("name", txt),
			psqlbuilder.ILike("lead_name", txt),
			psqlbuilder.ILike("company_name", txt),
			psqlbuilder.ILike("email_id", txt),
		}).
		OrderByClause(positionClause("name"), pos, domain.MissingPosition).
		OrderByClause(positionClause("lead_name"), pos, domain.MissingPosition).
		OrderByClause(positionClause("company_name"), pos, domain.MissingPosition).
		OrderBy("modified DESC", "name").
		Offset(uint64(start)).
		Limit(uint64(pageLen))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Search - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Search - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	results := make([]domain.LeadSearchResult, 0)
	for rows.Next() {
		var res domain.LeadSearchResult
		if err := rows.Scan(&res.Name, &res.LeadName, &res.CompanyName); err != nil {
			return nil, fmt.Errorf("%w: Search - scan row: %v", ErrScanRow, err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Search - rows error: %v", ErrScanRow, err)
	}

	return results, nil
}

// Delete удаляет лид
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
		return ErrLeadNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) (*domain.Lead, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	lead, err := scanLead(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan lead: %v", ErrScanRow, op, err)
	}

	return lead, nil
}

func positionClause(column string) string {
	return "COALESCE(NULLIF(STRPOS(LOWER(" + column + "), LOWER(?)), 0), ?)"
}

func writeMap(l *domain.Lead) map[string]interface{} {
	return map[string]interface{}{
		"lead_name":         l.LeadName,
		"company_name":      l.CompanyName,
		"organization_lead": l.OrganizationLead,
		"salutation":        l.Salutation,
		"gender":            l.Gender,
		"designation":       l.Designation,
		"email_id":          l.EmailID,
		"mobile_no":         l.MobileNo,
		"mobile_no_2":       l.MobileNo2,
		"phone":             l.Phone,
		"tax_id":            l.TaxID,
		"tax_cnic":          l.TaxCNIC,
		"tax_strn":          l.TaxSTRN,
		"address_line1":     l.AddressLine1,
		"address_line2":     l.AddressLine2,
		"city":              l.City,
		"state":             l.State,
		"country":           l.Country,
		"territory":         l.Territory,
		"campaign":          l.Campaign,
		"sales_person":      l.SalesPerson,
		"source":            l.Source,
		"status":            l.Status,
		"image":             l.Image,
		"notes":             l.Notes,
		"docstatus":         l.DocStatus,
	}
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.Name,
		&l.LeadName,
		&l.CompanyName,
		&l.OrganizationLead,
		&l.Salutation,
		&l.Gender,
		&l.Designation,
		&l.EmailID,
		&l.MobileNo,
		&l.MobileNo2,
		&l.Phone,
		&l.TaxID,
		&l.TaxCNIC,
		&l.TaxSTRN,
		&l.AddressLine1,
		&l.AddressLine2,
		&l.City,
		&l.State,
		&l.Country,
		&l.Territory,
		&l.Campaign,
		&l.SalesPerson,
		&l.Source,
		&l.Status,
		&l.Image,
		&l.Notes,
		&l.DocStatus,
		&l.CreatedAt,
		&l.Modified,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
