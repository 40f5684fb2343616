package quotes

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/currency"

	"github.com/quillbooks/quillbooks/internal/billing/document"
	"github.com/quillbooks/quillbooks/internal/billing/sequence"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/money"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/internal/users"
)

type Service struct {
	repo         Repository
	customerRepo customers.Repository
	userRepo     users.Repository
	sequences    *sequence.Generator
	now          func() time.Time
}

func NewService(repo Repository, customerRepo customers.Repository, userRepo users.Repository, sequences *sequence.Generator) *Service {
	return &Service{
		repo:         repo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		sequences:    sequences,
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateQuoteRequest) (*Quote, error) {
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

	now := s.now()
	number, err := s.sequences.Generate(ctx, sequence.TypeQuote, now.Year(), sequence.DefaultPadding)
	if err != nil {
		return nil, fmt.Errorf("generate quote number: %w", err)
	}

	quote := &Quote{
		Number:     number,
		CompanyID:  req.CompanyID,
		CustomerID: req.CustomerID,
		Document:   doc,
		Status:     StatusDraft,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err = repo.Create(ctx, quote)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update replaces a draft quote's commercial content and refreshes the
// party snapshots to the current customer and company records.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuoteRequest) (*Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	doc, err := s.buildDocument(ctx, quote.CompanyID, quote.CustomerID, documentPayload{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Currency: req.Currency,
		VATRate:  req.VATRate,
		Lines:    req.Lines,
	})
	if err != nil {
		return nil, err
	}

	if err := quote.Apply(doc); err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.UpdateDocument(ctx, quote)
	})
	if err != nil {
		return nil, fmt.Errorf("update quote: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Send(ctx context.Context, id int64) (*Quote, error) {
	return s.transition(ctx, id, func(q *Quote) error { return q.Send(s.now()) })
}

func (s *Service) Accept(ctx context.Context, id int64) (*Quote, error) {
	return s.transition(ctx, id, func(q *Quote) error { return q.MarkAccepted(s.now()) })
}

func (s *Service) Reject(ctx context.Context, id int64) (*Quote, error) {
	return s.transition(ctx, id, func(q *Quote) error { return q.MarkRejected(s.now()) })
}

func (s *Service) transition(ctx context.Context, id int64, apply func(*Quote) error) (*Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if err := apply(quote); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, quote); err != nil {
		return nil, fmt.Errorf("persist quote status: %w", err)
	}
	return quote, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Quote, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	return s.repo.List(ctx, req)
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
