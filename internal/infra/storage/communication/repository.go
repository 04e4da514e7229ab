package communication

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
	"github.com/m04kA/SMC-CRM/pkg/psqlbuilder"
)

const (
	table      = "communications"
	linksTable = "communication_links"
)

// Repository репозиторий коммуникаций
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория коммуникаций
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет коммуникацию вместе со ссылками для ленты
func (r *Repository) Create(ctx context.Context, c *domain.Communication) (*domain.Communication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert(table).
		Columns(
			"reference_doctype",
			"reference_name",
			"communication_type",
			"communication_medium",
			"subject",
			"content",
			"sender",
			"sender_full_name",
			"phone_no",
			"sent_or_received",
			"communication_date",
		)

	var date interface{} = c.CommunicationDate
	if c.CommunicationDate.IsZero() {
		date = squirrel.Expr("NOW()")
	}
	insert = insert.Values(
		c.ReferenceDoctype,
		c.ReferenceName,
		c.CommunicationType,
		c.Medium,
		c.Subject,
		c.Content,
		c.Sender,
		c.SenderFullName,
		c.Phone,
		c.SentOrReceived,
		date,
	)

	query, args, err := insert.Suffix("RETURNING id, communication_date").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CommunicationDate); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if len(c.TimelineLinks) == 0 {
		return c, nil
	}

	linksInsert := psqlbuilder.Insert(linksTable).Columns("communication_id", "link_doctype", "link_name")
	for _, l := range c.TimelineLinks {
		linksInsert = linksInsert.Values(c.ID, l.LinkDoctype, l.LinkName)
	}

	query, args, err = linksInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build links insert: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert links: %v", ErrExecQuery, err)
	}

	return c, nil
}

// HasNonAutomated есть ли у документа коммуникации, кроме автоматических сообщений
func (r *Repository) HasNonAutomated(ctx context.Context, doctype, name string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(squirrel.Eq{"reference_doctype": doctype, "reference_name": name}).
		Where(squirrel.NotEq{"communication_type": domain.CommunicationTypeAutomatedMessage}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasNonAutomated - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: HasNonAutomated - scan exists: %v", ErrScanRow, err)
	}

	return exists, nil
}

// ListForTimeline коммуникации документа: по прямой ссылке и по ссылкам ленты, новые первыми
func (r *Repository) ListForTimeline(ctx context.Context, doctype, name string) ([]domain.Communication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	linked := psqlbuilder.Select("l.communication_id").
		From(linksTable+" l").
		Where(squirrel.Eq{"l.link_doctype": doctype, "l.link_name": name})
	linkedSQL, linkedArgs, err := linked.PlaceholderFormat(squirrel.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForTimeline - build links subquery: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"reference_doctype",
		"reference_name",
		"communication_type",
		"communication_medium",
		"subject",
		"content",
		"sender",
		"sender_full_name",
		"phone_no",
		"sent_or_received",
		"communication_date",
	).
		From(table).
		Where(squirrel.Or{
			squirrel.Eq{"reference_doctype": doctype, "reference_name": name},
			squirrel.Expr("id IN ("+linkedSQL+")", linkedArgs...),
		}).
		OrderBy("communication_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForTimeline - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForTimeline - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]domain.Communication, 0)
	for rows.Next() {
		var c domain.Communication
		err := rows.Scan(
			&c.ID,
			&c.ReferenceDoctype,
			&c.ReferenceName,
			&c.CommunicationType,
			&c.Medium,
			&c.Subject,
			&c.Content,
			&c.Sender,
			&c.SenderFullName,
			&c.Phone,
			&c.SentOrReceived,
			&c.CommunicationDate,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListForTimeline - scan row: %v", ErrScanRow, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListForTimeline - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
