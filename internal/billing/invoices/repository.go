package invoices

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
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	ListSeeds(ctx context.Context) ([]Invoice, error)
	Create(ctx context.Context, invoice *Invoice) (int64, error)
	UpdateDocument(ctx context.Context, invoice *Invoice) error
	UpdateStatus(ctx context.Context, invoice *Invoice) error
	UpdateSchedule(ctx context.Context, invoice *Invoice) error
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

const invoiceColumns = `
	i.id, i.number, i.company_id, i.customer_id, i.title, i.subtitle, i.currency,
	i.vat_rate::text, i.total_net::text, i.total_tax::text, i.total_gross::text,
	i.customer_snapshot, i.company_snapshot,
	i.status, i.due_date, i.issued_at, i.paid_at,
	i.recurrence, i.installment_plan,
	i.recurrence_seed_id, i.installment_seed_id, i.quote_id,
	i.created_at, i.updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT`+invoiceColumns+` FROM invoices i WHERE i.id = $1`, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice %d", shared.ErrNotFound, id)
		}
		return nil, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines
	return invoice, nil
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	conditions := "WHERE i.company_id = $1"
	args := []interface{}{req.CompanyID}
	argPos := 2

	if req.CustomerID != nil {
		conditions += fmt.Sprintf(" AND i.customer_id = $%d", argPos)
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Status != nil {
		conditions += fmt.Sprintf(" AND i.status = $%d", argPos)
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.DateFrom != nil {
		conditions += fmt.Sprintf(" AND i.created_at >= $%d", argPos)
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions += fmt.Sprintf(" AND i.created_at <= $%d", argPos)
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.DueBefore != nil {
		conditions += fmt.Sprintf(" AND i.due_date IS NOT NULL AND i.due_date < $%d", argPos)
		args = append(args, *req.DueBefore)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices i `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT%s FROM invoices i %s ORDER BY i.created_at DESC, i.id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, conditions, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, total, rows.Err()
}

// ListSeeds returns non-terminal invoices carrying a schedule. The worker
// scans these periodically; runnability is decided per seed afterwards.
func (r *repository) ListSeeds(ctx context.Context) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT`+invoiceColumns+` FROM invoices i
		WHERE (i.recurrence IS NOT NULL OR i.installment_plan IS NOT NULL)
		  AND i.status NOT IN ('PAID', 'VOIDED')
		ORDER BY i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seeds []Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, *invoice)
	}
	return seeds, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv *Invoice) (int64, error) {
	customerSnap, companySnap, err := marshalSnapshots(inv)
	if err != nil {
		return 0, err
	}
	recurrence, plan, err := marshalSchedule(inv)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO invoices (
			number, company_id, customer_id, title, subtitle, currency,
			vat_rate, total_net, total_tax, total_gross,
			customer_snapshot, company_snapshot, status, due_date,
			recurrence, installment_plan,
			recurrence_seed_id, installment_seed_id, quote_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7::numeric, $8::numeric, $9::numeric, $10::numeric,
			$11, $12, $13, $14,
			$15, $16,
			$17, $18, $19,
			NOW(), NOW()
		)
		RETURNING id
	`, inv.Number, inv.CompanyID, inv.CustomerID, inv.Title, inv.Subtitle, inv.Currency,
		inv.VATRate, inv.Total.Net, inv.Total.Tax, inv.Total.Gross,
		customerSnap, companySnap, string(inv.Status), inv.DueDate,
		recurrence, plan,
		inv.RecurrenceSeedID, inv.InstallmentSeedID, inv.QuoteID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: %s", shared.ErrConflict, pgErr.ConstraintName)
		}
		return 0, err
	}

	if err := r.insertLines(ctx, id, inv.Lines); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateDocument(ctx context.Context, inv *Invoice) error {
	customerSnap, companySnap, err := marshalSnapshots(inv)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET
			title = $1, subtitle = $2, currency = $3,
			vat_rate = $4::numeric, total_net = $5::numeric, total_tax = $6::numeric, total_gross = $7::numeric,
			customer_snapshot = $8, company_snapshot = $9, updated_at = NOW()
		WHERE id = $10
	`, inv.Title, inv.Subtitle, inv.Currency,
		inv.VATRate, inv.Total.Net, inv.Total.Tax, inv.Total.Gross,
		customerSnap, companySnap, inv.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, inv.ID)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, inv.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, inv.ID, inv.Lines)
}

func (r *repository) UpdateStatus(ctx context.Context, inv *Invoice) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET
			status = $1, due_date = $2, issued_at = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $5
	`, string(inv.Status), inv.DueDate, inv.IssuedAt, inv.PaidAt, inv.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, inv.ID)
	}
	return nil
}

func (r *repository) UpdateSchedule(ctx context.Context, inv *Invoice) error {
	recurrence, plan, err := marshalSchedule(inv)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET recurrence = $1, installment_plan = $2, updated_at = NOW()
		WHERE id = $3
	`, recurrence, plan, inv.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d", shared.ErrNotFound, inv.ID)
	}
	return nil
}

func (r *repository) insertLines(ctx context.Context, invoiceID int64, lines []document.Line) error {
	for _, line := range lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, description, quantity, rate_unit, rate, net, tax, gross, position)
			VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9)
		`, invoiceID, line.Description, line.Quantity, string(line.RateUnit), line.Rate,
			line.Amount.Net, line.Amount.Tax, line.Amount.Gross, line.Position)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}

func (r *repository) loadLines(ctx context.Context, invoiceID int64) ([]document.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, description, quantity::text, rate_unit, rate::text, net::text, tax::text, gross::text, position
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position
	`, invoiceID)
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

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv          Invoice
		status       string
		customerSnap []byte
		companySnap  []byte
		recurrence   []byte
		plan         []byte
	)
	if err := row.Scan(
		&inv.ID, &inv.Number, &inv.CompanyID, &inv.CustomerID, &inv.Title, &inv.Subtitle, &inv.Currency,
		&inv.VATRate, &inv.Total.Net, &inv.Total.Tax, &inv.Total.Gross,
		&customerSnap, &companySnap,
		&status, &inv.DueDate, &inv.IssuedAt, &inv.PaidAt,
		&recurrence, &plan,
		&inv.RecurrenceSeedID, &inv.InstallmentSeedID, &inv.QuoteID,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	inv.Status = Status(status)
	if err := json.Unmarshal(customerSnap, &inv.Customer); err != nil {
		return nil, fmt.Errorf("decode customer snapshot: %w", err)
	}
	if err := json.Unmarshal(companySnap, &inv.Company); err != nil {
		return nil, fmt.Errorf("decode company snapshot: %w", err)
	}
	if len(recurrence) > 0 {
		if err := json.Unmarshal(recurrence, &inv.Recurrence); err != nil {
			return nil, fmt.Errorf("decode recurrence: %w", err)
		}
	}
	if len(plan) > 0 {
		if err := json.Unmarshal(plan, &inv.InstallmentPlan); err != nil {
			return nil, fmt.Errorf("decode installment plan: %w", err)
		}
	}
	return &inv, nil
}

func marshalSnapshots(inv *Invoice) ([]byte, []byte, error) {
	customerSnap, err := json.Marshal(inv.Customer)
	if err != nil {
		return nil, nil, fmt.Errorf("encode customer snapshot: %w", err)
	}
	companySnap, err := json.Marshal(inv.Company)
	if err != nil {
		return nil, nil, fmt.Errorf("encode company snapshot: %w", err)
	}
	return customerSnap, companySnap, nil
}

// marshalSchedule encodes whichever schedule is attached. Both nil means
// both columns NULL.
func marshalSchedule(inv *Invoice) ([]byte, []byte, error) {
	var recurrence, plan []byte
	var err error
	if inv.Recurrence != nil {
		if recurrence, err = json.Marshal(inv.Recurrence); err != nil {
			return nil, nil, fmt.Errorf("encode recurrence: %w", err)
		}
	}
	if inv.InstallmentPlan != nil {
		if plan, err = json.Marshal(inv.InstallmentPlan); err != nil {
			return nil, nil, fmt.Errorf("encode installment plan: %w", err)
		}
	}
	return recurrence, plan, nil
}
