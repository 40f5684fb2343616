package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/platform/db"
	"github.com/quillbooks/quillbooks/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quote, error)
	List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error)
	Create(ctx context.Context, quote *Quote) (int64, error)
	UpdateDocument(ctx context.Context, quote *Quote) error
	UpdateStatus(ctx context.Context, quote *Quote) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quoteColumns = `
	q.id, q.number, q.company_id, q.customer_id, q.title, q.subtitle, q.currency,
	q.vat_rate::text, q.total_net::text, q.total_tax::text, q.total_gross::text,
	q.customer_snapshot, q.company_snapshot,
	q.status, q.sent_at, q.accepted_at, q.rejected_at, q.converted_invoice_id,
	q.created_at, q.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Quote, error) {
	row := r.db.QueryRow(ctx, `SELECT`+quoteColumns+` FROM quotes q WHERE q.id = $1`, id)
	quote, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: quote %d", shared.ErrNotFound, id)
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Lines = lines
	return quote, nil
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	conditions := "WHERE q.company_id = $1"
	args := []interface{}{req.CompanyID}
	argPos := 2

	if req.CustomerID != nil {
		conditions += fmt.Sprintf(" AND q.customer_id = $%d", argPos)
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions += fmt.Sprintf(" AND q.status = $%d", argPos)
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.DateFrom != nil {
		conditions += fmt.Sprintf(" AND q.created_at >= $%d", argPos)
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions += fmt.Sprintf(" AND q.created_at <= $%d", argPos)
		args = append(args, *req.DateTo)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes q `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT%s FROM quotes q %s ORDER BY q.created_at DESC, q.id DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, *quote)
	}
	return quotes, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q *Quote) (int64, error) {
	customerSnap, companySnap, err := marshalSnapshots(q)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO quotes (
			number, company_id, customer_id, title, subtitle, currency,
			vat_rate, total_net, total_tax, total_gross,
			customer_snapshot, company_snapshot, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::numeric, $8::numeric, $9::numeric, $10::numeric,
			$11, $12, $13, NOW(), NOW()
		)
		RETURNING id
	`, q.Number, q.CompanyID, q.CustomerID, q.Title, q.Subtitle, q.Currency,
		q.VATRate, q.Total.Net, q.Total.Tax, q.Total.Gross,
		customerSnap, companySnap, string(q.Status)).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := r.insertLines(ctx, id, q.Lines); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateDocument(ctx context.Context, q *Quote) error {
	customerSnap, companySnap, err := marshalSnapshots(q)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET
			title = $1, subtitle = $2, currency = $3,
			vat_rate = $4::numeric, total_net = $5::numeric, total_tax = $6::numeric, total_gross = $7::numeric,
			customer_snapshot = $8, company_snapshot = $9, updated_at = NOW()
		WHERE id = $10
	`, q.Title, q.Subtitle, q.Currency,
		q.VATRate, q.Total.Net, q.Total.Tax, q.Total.Gross,
		customerSnap, companySnap, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quote %d", shared.ErrNotFound, q.ID)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM quote_lines WHERE quote_id = $1`, q.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, q.ID, q.Lines)
}

func (r *repository) UpdateStatus(ctx context.Context, q *Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET
			status = $1, sent_at = $2, accepted_at = $3, rejected_at = $4,
			converted_invoice_id = $5, updated_at = NOW()
		WHERE id = $6
	`, string(q.Status), q.SentAt, q.AcceptedAt, q.RejectedAt, q.ConvertedInvoiceID, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: quote %d", shared.ErrNotFound, q.ID)
	}
	return nil
}

func (r *repository) insertLines(ctx context.Context, quoteID int64, lines []document.Line) error {
	for _, line := range lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO quote_lines (quote_id, description, quantity, rate_unit, rate, net, tax, gross, position)
			VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9)
		`, quoteID, line.Description, line.Quantity, string(line.RateUnit), line.Rate,
			line.Amount.Net, line.Amount.Tax, line.Amount.Gross, line.Position)
		if err != nil {
			return fmt.Errorf("insert quote line: %w", err)
		}
	}
	return nil
}

func (r *repository) loadLines(ctx context.Context, quoteID int64) ([]document.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, description, quantity::text, rate_unit, rate::text, net::text, tax::text, gross::text, position
		FROM quote_lines WHERE quote_id = $1 ORDER BY position
	`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []document.Line
	for rows.Next() {
		var line document.Line
		var rateUnit string
		if err := rows.Scan(
			&line.ID, &line.Description, &line.Quantity, &rateUnit, &line.Rate,
			&line.Amount.Net, &line.Amount.Tax, &line.Amount.Gross, &line.Position,
		); err != nil {
			return nil, err
		}
		line.RateUnit = document.RateUnit(rateUnit)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q            Quote
		status       string
		customerSnap []byte
		companySnap  []byte
	)
	if err := row.Scan(
		&q.ID, &q.Number, &q.CompanyID, &q.CustomerID, &q.Title, &q.Subtitle, &q.Currency,
		&q.VATRate, &q.Total.Net, &q.Total.Tax, &q.Total.Gross,
		&customerSnap, &companySnap,
		&status, &q.SentAt, &q.AcceptedAt, &q.RejectedAt, &q.ConvertedInvoiceID,
		&q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.Status = Status(status)
	if err := json.Unmarshal(customerSnap, &q.Customer); err != nil {
		return nil, fmt.Errorf("decode customer snapshot: %w", err)
	}
	if err := json.Unmarshal(companySnap, &q.Company); err != nil {
		return nil, fmt.Errorf("decode company snapshot: %w", err)
	}
	return &q, nil
}

func marshalSnapshots(q *Quote) ([]byte, []byte, error) {
	customerSnap, err := json.Marshal(q.Customer)
	if err != nil {
		return nil, nil, fmt.Errorf("encode customer snapshot: %w", err)
	}
	companySnap, err := json.Marshal(q.Company)
	if err != nil {
		return nil, nil, fmt.Errorf("encode company snapshot: %w", err)
	}
	return customerSnap, companySnap, nil
}
