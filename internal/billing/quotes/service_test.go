package quotes

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/billing/sequence"
	"github.com/quillbooks/quillbooks/internal/customers"
	"github.com/quillbooks/quillbooks/internal/shared"
	"github.com/quillbooks/quillbooks/internal/users"
)

type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	quotes map[int64]*Quote
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, quotes: map[int64]*Quote{}}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (*Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quote, ok := f.quotes[id]
	if !ok {
		return nil, fmt.Errorf("%w: quote %d", shared.ErrNotFound, id)
	}
	copied := *quote
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Quote
	for _, quote := range f.quotes {
		if quote.CompanyID == req.CompanyID {
			out = append(out, *quote)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Create(ctx context.Context, quote *Quote) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	stored := *quote
	stored.ID = id
	f.quotes[id] = &stored
	return id, nil
}

func (f *fakeRepo) UpdateDocument(ctx context.Context, quote *Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.quotes[quote.ID]
	if !ok {
		return fmt.Errorf("%w: quote %d", shared.ErrNotFound, quote.ID)
	}
	stored.Document = quote.Document
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, quote *Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.quotes[quote.ID]
	if !ok {
		return fmt.Errorf("%w: quote %d", shared.ErrNotFound, quote.ID)
	}
	stored.Status = quote.Status
	stored.SentAt = quote.SentAt
	stored.AcceptedAt = quote.AcceptedAt
	stored.RejectedAt = quote.RejectedAt
	stored.ConvertedInvoiceID = quote.ConvertedInvoiceID
	return nil
}

type fakeCustomerRepo struct {
	customer customers.Customer
}

func (f *fakeCustomerRepo) Get(ctx context.Context, id int64) (*customers.Customer, error) {
	if id != f.customer.ID {
		return nil, fmt.Errorf("%w: customer %d", shared.ErrNotFound, id)
	}
	copied := f.customer
	return &copied, nil
}

func (f *fakeCustomerRepo) List(ctx context.Context, req customers.ListCustomersRequest) ([]customers.Customer, int, error) {
	return []customers.Customer{f.customer}, 1, nil
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer customers.Customer) (int64, error) {
	return customer.ID, nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

type fakeUserRepo struct {
	company users.Company
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user users.User) (int64, error) {
	return user.ID, nil
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id int64) (*users.User, error) {
	return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
}

func (f *fakeUserRepo) GetCompany(ctx context.Context, id int64) (*users.Company, error) {
	if id != f.company.ID {
		return nil, fmt.Errorf("%w: company %d", shared.ErrNotFound, id)
	}
	copied := f.company
	return &copied, nil
}

func (f *fakeUserRepo) UpdateCompany(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

type memSequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (s *memSequenceStore) ReserveNext(ctx context.Context, docType sequence.DocumentType, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counters == nil {
		s.counters = map[string]int64{}
	}
	key := fmt.Sprintf("%s:%d", docType, year)
	s.counters[key]++
	return s.counters[key], nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewService(
		repo,
		&fakeCustomerRepo{customer: customers.Customer{
			ID: 11, CompanyID: 1, Name: "Acme GmbH", Email: "billing@acme.test",
			Address: "Hauptstr. 1", City: "Berlin", PostalCode: "10115", CountryCode: "DE",
		}},
		&fakeUserRepo{company: users.Company{
			ID: 1, Name: "Quill Studio", Email: "hello@quill.test",
			Address: "Kanalweg 9", City: "Hamburg", PostalCode: "20095", CountryCode: "DE", VATNumber: "DE123456789",
		}},
		sequence.NewGenerator(&memSequenceStore{}),
	)
	svc.now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func createRequest() CreateQuoteRequest {
	return CreateQuoteRequest{
		CompanyID:  1,
		CustomerID: 11,
		Title:      "Website relaunch",
		Currency:   "EUR",
		VATRate:    19,
		Lines: []LineRequest{
			{Description: "Design", Quantity: 10, RateUnit: "HOURLY", Rate: 120},
			{Description: "Implementation", Quantity: 3, RateUnit: "DAILY", Rate: 900},
		},
	}
}

func TestServiceCreatePricesAndNumbers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quote, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	require.Equal(t, "Q-2026-0001", quote.Number)
	require.Equal(t, StatusDraft, quote.Status)
	require.Len(t, quote.Lines, 2)

	// 10 x 120.00 + 3 x 900.00 = 3900.00 net, 19% VAT.
	require.Equal(t, "3900.00", quote.Total.Net)
	require.Equal(t, "741.00", quote.Total.Tax)
	require.Equal(t, "4641.00", quote.Total.Gross)

	require.Equal(t, "Acme GmbH", quote.Customer.Name)
	require.Equal(t, "DE123456789", quote.Company.VATNumber)

	second, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)
	require.Equal(t, "Q-2026-0002", second.Number)
}

func TestServiceCreateRejectsUnknownCurrency(t *testing.T) {
	svc, _ := newTestService(t)

	req := createRequest()
	req.Currency = "ZZZ"
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceCreateRejectsUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	req := createRequest()
	req.CustomerID = 999
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceUpdateReprices(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quote, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, quote.ID, UpdateQuoteRequest{
		Title:    "Website relaunch, phase 2",
		Currency: "EUR",
		VATRate:  19,
		Lines: []LineRequest{
			{Description: "Design", Quantity: 4, RateUnit: "HOURLY", Rate: 150},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "600.00", updated.Total.Net)
	require.Equal(t, "114.00", updated.Total.Tax)
	require.Equal(t, "714.00", updated.Total.Gross)
	require.Equal(t, quote.Number, updated.Number, "number survives edits")
}

func TestServiceUpdateRefusesSentQuote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quote, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = svc.Send(ctx, quote.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, quote.ID, UpdateQuoteRequest{
		Title: "too late", Currency: "EUR", VATRate: 19,
		Lines: []LineRequest{{Description: "x", Quantity: 1, RateUnit: "HOURLY", Rate: 1}},
	})
	require.ErrorIs(t, err, shared.ErrRuleViolation)
}

func TestServiceTransitions(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	quote, err := svc.Create(ctx, createRequest())
	require.NoError(t, err)

	sent, err := svc.Send(ctx, quote.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, sent.Status)

	accepted, err := svc.Accept(ctx, quote.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)

	stored, err := repo.Get(ctx, quote.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, stored.Status)

	_, err = svc.Send(ctx, quote.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}
