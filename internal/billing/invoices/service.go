package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/currency"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/billing/installments"
	"github.com/quillbooks/quillbooks/internal/billing/quotes"
	"github.com/quillbooks/quillbooks/internal/billing/schedule"
	"github.com/quillbooks/quillbooks/internal/billing/sequence"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/internal/users"
)

type Service struct {
	repo         Repository
	quoteRepo    quotes.Repository
	customerRepo customers.Repository
	userRepo     users.Repository
	sequences    *sequence.Generator
	locker       *shared.Locker
	now          func() time.Time
}

func NewService(repo Repository, quoteRepo quotes.Repository, customerRepo customers.Repository, userRepo users.Repository, sequences *sequence.Generator, locker *shared.Locker) *Service {
	return &Service{
		repo:         repo,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		sequences:    sequences,
		locker:       locker,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	doc, err := s.buildDocument(ctx, req.CompanyID, req.CustomerID, documentPayload{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Currency: req.Currency,
		VATRate:  req.VATRate,
		Lines:    req.Lines,
	})
	if err != nil {
		return nil, err
	}

	invoice := &Invoice{
		CompanyID:  req.CompanyID,
		CustomerID: req.CustomerID,
		Document:   doc,
		Status:     StatusDraft,
	}

	id, err := s.persistNew(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update replaces a draft invoice's commercial content and refreshes the
// party snapshots. Editing a seed reprices what future occurrences will
// derive from; an attached installment plan is rebuilt against the new
// total so its shares keep reconciling.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	doc, err := s.buildDocument(ctx, invoice.CompanyID, invoice.CustomerID, documentPayload{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Currency: req.Currency,
		VATRate:  req.VATRate,
		Lines:    req.Lines,
	})
	if err != nil {
		return nil, err
	}

	if err := invoice.Apply(doc); err != nil {
		return nil, err
	}

	rebuilt, err := rebuildPlan(invoice)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateDocument(ctx, invoice); err != nil {
			return err
		}
		if rebuilt {
			return repo.UpdateSchedule(ctx, invoice)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return s.Get(ctx, id)
}

// rebuildPlan re-allocates an attached installment plan over the invoice's
// new total, preserving percentages, due dates and generated flags.
func rebuildPlan(invoice *Invoice) (bool, error) {
	plan := invoice.InstallmentPlan
	if plan == nil {
		return false, nil
	}
	percentages := make([]string, len(plan.Installments))
	dueDates := make([]*time.Time, len(plan.Installments))
	for i, inst := range plan.Installments {
		if inst.Generated {
			return false, fmt.Errorf("%w: installment plan on invoice %d has already generated invoices", shared.ErrRuleViolation, invoice.ID)
		}
		percentages[i] = inst.Percentage
		dueDates[i] = inst.DueDate
	}
	fresh, err := installments.NewPlan(invoice.Total, percentages, dueDates)
	if err != nil {
		return false, fmt.Errorf("rebuild installment plan: %w", err)
	}
	invoice.InstallmentPlan = fresh
	return true, nil
}

func (s *Service) Issue(ctx context.Context, id int64, dueDate time.Time) (*Invoice, error) {
	return s.transition(ctx, id, func(inv *Invoice) error { return inv.Issue(s.now(), dueDate) })
}

func (s *Service) Pay(ctx context.Context, id int64) (*Invoice, error) {
	return s.transition(ctx, id, func(inv *Invoice) error { return inv.MarkPaid(s.now()) })
}

func (s *Service) Void(ctx context.Context, id int64) (*Invoice, error) {
	return s.transition(ctx, id, func(inv *Invoice) error { return inv.Void() })
}

func (s *Service) transition(ctx context.Context, id int64, apply func(*Invoice) error) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := apply(invoice); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, invoice); err != nil {
		return nil, fmt.Errorf("persist invoice status: %w", err)
	}
	invoice.Status = invoice.EffectiveStatus(s.now())
	return invoice, nil
}

// Get returns the invoice with its effective status, so an issued invoice
// past due reads as OVERDUE.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Status = invoice.EffectiveStatus(s.now())
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	now := s.now()

	// OVERDUE is not a stored status. Resolve the filter to ISSUED rows
	// whose due date has passed so pagination and the total count run over
	// the real overdue set.
	if req.Status != nil && *req.Status == StatusOverdue {
		issued := StatusIssued
		req.Status = &issued
		req.DueBefore = &now
	}

	invoices, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	for i := range invoices {
		invoices[i].Status = invoices[i].EffectiveStatus(now)
	}
	return invoices, total, nil
}

func (s *Service) AttachRecurrence(ctx context.Context, id int64, req AttachRecurrenceRequest) (*Invoice, error) {
	rec, err := schedule.New(
		schedule.Frequency(req.Frequency), req.Interval, req.AnchorDate,
		schedule.EndStrategy(req.EndStrategy), req.EndDate, req.OccurrenceCount,
	)
	if err != nil {
		return nil, err
	}
	return s.updateSchedule(ctx, id, func(inv *Invoice) error { return inv.AttachRecurrence(rec) })
}

func (s *Service) AttachInstallmentPlan(ctx context.Context, id int64, req AttachInstallmentPlanRequest) (*Invoice, error) {
	percentages := make([]string, len(req.Installments))
	dueDates := make([]*time.Time, len(req.Installments))
	for i, inst := range req.Installments {
		percentages[i] = money.Decimal(inst.Percentage, money.ScaleAmount)
		dueDates[i] = inst.DueDate
	}
	return s.updateSchedule(ctx, id, func(inv *Invoice) error {
		plan, err := installments.NewPlan(inv.Total, percentages, dueDates)
		if err != nil {
			return err
		}
		return inv.AttachInstallmentPlan(plan)
	})
}

func (s *Service) DetachSchedule(ctx context.Context, id int64) (*Invoice, error) {
	return s.updateSchedule(ctx, id, func(inv *Invoice) error { return inv.DetachSchedule() })
}

func (s *Service) updateSchedule(ctx context.Context, id int64, apply func(*Invoice) error) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := apply(invoice); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSchedule(ctx, invoice); err != nil {
		return nil, fmt.Errorf("persist invoice schedule: %w", err)
	}
	invoice.Status = invoice.EffectiveStatus(s.now())
	return invoice, nil
}

// ConvertQuote derives a draft invoice from an accepted quote. The quote's
// document is carried verbatim, snapshots included, under a fresh invoice
// number. Satisfies quotes.Converter.
func (s *Service) ConvertQuote(ctx context.Context, quoteID int64) (int64, string, error) {
	quote, err := s.quoteRepo.Get(ctx, quoteID)
	if err != nil {
		return 0, "", fmt.Errorf("get quote: %w", err)
	}
	if err := quote.CanConvert(); err != nil {
		return 0, "", err
	}

	qID := quote.ID
	invoice := &Invoice{
		CompanyID:  quote.CompanyID,
		CustomerID: quote.CustomerID,
		Document:   quote.Document,
		Status:     StatusDraft,
		QuoteID:    &qID,
	}
	for i := range invoice.Lines {
		invoice.Lines[i].ID = 0
	}

	id, err := s.persistNew(ctx, invoice)
	if err != nil {
		// The unique index on quote_id catches a concurrent conversion the
		// CanConvert read missed.
		if errors.Is(err, shared.ErrConflict) {
			return 0, "", fmt.Errorf("%w: quote %d already converted", shared.ErrRuleViolation, quoteID)
		}
		return 0, "", err
	}

	if err := quote.LinkConvertedInvoice(id); err != nil {
		return 0, "", err
	}
	if err := s.quoteRepo.UpdateStatus(ctx, quote); err != nil {
		return 0, "", fmt.Errorf("link converted invoice: %w", err)
	}
	return id, invoice.Number, nil
}

// GenerateNext derives the next invoice from a seed's schedule. The per-seed
// lock makes derive-then-advance atomic across concurrent workers; force
// generates a recurrence occurrence ahead of its scheduled time.
func (s *Service) GenerateNext(ctx context.Context, seedID int64, force bool) (*Invoice, error) {
	release, err := s.locker.Acquire(ctx, shared.SeedLockKey(seedID))
	if err != nil {
		if errors.Is(err, shared.ErrLockBusy) {
			return nil, fmt.Errorf("%w: generation already running for invoice %d", shared.ErrConflict, seedID)
		}
		return nil, err
	}
	defer release()

	var derived *Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		seed, err := repo.Get(ctx, seedID)
		if err != nil {
			return fmt.Errorf("get seed invoice: %w", err)
		}

		switch {
		case seed.Recurrence != nil:
			derived, err = DeriveFromRecurrence(seed, s.now(), force)
			if err != nil {
				return err
			}
			if err := s.assignNumber(ctx, derived); err != nil {
				return err
			}
			id, err := repo.Create(ctx, derived)
			if err != nil {
				return fmt.Errorf("create derived invoice: %w", err)
			}
			derived.ID = id
			seed.Recurrence.Advance()

		case seed.InstallmentPlan != nil:
			var pending *installments.Installment
			derived, pending, err = DeriveFromInstallment(seed)
			if err != nil {
				return err
			}
			if err := s.assignNumber(ctx, derived); err != nil {
				return err
			}
			id, err := repo.Create(ctx, derived)
			if err != nil {
				return fmt.Errorf("create derived invoice: %w", err)
			}
			derived.ID = id
			seed.InstallmentPlan.MarkGenerated(pending.Position)

		default:
			return fmt.Errorf("%w: invoice %d has no schedule attached", shared.ErrRuleViolation, seedID)
		}

		return repo.UpdateSchedule(ctx, seed)
	})
	if err != nil {
		return nil, err
	}
	return derived, nil
}

// GenerateDue walks every seed and generates what is runnable now. Seeds
// that fail keep the sweep going; their errors are joined into the result.
func (s *Service) GenerateDue(ctx context.Context) (int, error) {
	seeds, err := s.repo.ListSeeds(ctx)
	if err != nil {
		return 0, fmt.Errorf("list seed invoices: %w", err)
	}

	now := s.now()
	var generated int
	var errs []error
	for _, seed := range seeds {
		if !s.runnable(&seed, now) {
			continue
		}
		if _, err := s.GenerateNext(ctx, seed.ID, false); err != nil {
			// Another worker holding the lock is not a failure.
			if errors.Is(err, shared.ErrConflict) {
				continue
			}
			errs = append(errs, fmt.Errorf("seed %d: %w", seed.ID, err))
			continue
		}
		generated++
	}
	return generated, errors.Join(errs...)
}

// runnable decides whether the sweep should touch a seed. Recurrences carry
// their own clock; installments generate whenever a slot with a reached due
// date (or no due date) is pending.
func (s *Service) runnable(seed *Invoice, now time.Time) bool {
	if seed.Recurrence != nil {
		return seed.Recurrence.IsRunnable(now, false)
	}
	pending := seed.InstallmentPlan.NextPending()
	if pending == nil {
		return false
	}
	return pending.DueDate == nil || !pending.DueDate.After(now)
}

func (s *Service) assignNumber(ctx context.Context, inv *Invoice) error {
	number, err := s.sequences.Generate(ctx, sequence.TypeInvoice, s.now().Year(), sequence.DefaultPadding)
	if err != nil {
		return fmt.Errorf("generate invoice number: %w", err)
	}
	inv.Number = number
	return nil
}

func (s *Service) persistNew(ctx context.Context, inv *Invoice) (int64, error) {
	if err := s.assignNumber(ctx, inv); err != nil {
		return 0, err
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, inv)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}
	inv.ID = id
	return id, nil
}

type documentPayload struct {
	Title    string
	Subtitle string
	Currency string
	VATRate  float64
	Lines    []LineRequest
}

func (s *Service) buildDocument(ctx context.Context, companyID, customerID int64, payload documentPayload) (document.Document, error) {
	if _, err := currency.ParseISO(payload.Currency); err != nil {
		return document.Document{}, fmt.Errorf("%w: unknown currency %q", shared.ErrValidation, payload.Currency)
	}

	customer, err := s.customerRepo.Get(ctx, customerID)
	if err != nil {
		return document.Document{}, fmt.Errorf("verify customer: %w", err)
	}
	company, err := s.userRepo.GetCompany(ctx, companyID)
	if err != nil {
		return document.Document{}, fmt.Errorf("verify company: %w", err)
	}

	vatRate := money.Decimal(payload.VATRate, money.ScaleAmount)
	inputs := make([]document.LineInput, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		inputs = append(inputs, document.LineInput{
			ID:          line.ID,
			Description: line.Description,
			Quantity:    money.Decimal(line.Quantity, money.ScaleQuantity),
			RateUnit:    document.RateUnit(line.RateUnit),
			Rate:        money.Decimal(line.Rate, money.ScaleAmount),
		})
	}

	lines, total, err := document.Reprice(inputs, vatRate)
	if err != nil {
		return document.Document{}, err
	}

	return document.Document{
		Title:    payload.Title,
		Subtitle: payload.Subtitle,
		Currency: payload.Currency,
		VATRate:  vatRate,
		Total:    total,
		Lines:    lines,
		Customer: customer.Snapshot(),
		Company:  company.Snapshot(),
	}, nil
}
