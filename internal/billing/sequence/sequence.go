// Package sequence generates human-readable document references backed by an
// atomic per-(type, year) counter.
package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// DocumentType selects the reference prefix.
type DocumentType string

const (
	TypeInvoice DocumentType = "INVOICE"
	TypeQuote   DocumentType = "QUOTE"
)

// DefaultPadding is the zero-padding width of the counter segment.
const DefaultPadding = 4

func (t DocumentType) prefix() (string, error) {
	switch t {
	case TypeInvoice:
		return "INV", nil
	case TypeQuote:
		return "Q", nil
	default:
		return "", fmt.Errorf("%w: unknown document type %q", shared.ErrValidation, t)
	}
}

// Store reserves counter values. ReserveNext must be atomic against
// concurrent reservation for the same (docType, year).
type Store interface {
	ReserveNext(ctx context.Context, docType DocumentType, year int) (int64, error)
}

// Generator formats document references such as INV-2026-0001.
type Generator struct {
	store Store
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// Generate reserves the next counter for (docType, year) and formats the
// reference as {PREFIX}-{year}-{zero-padded counter}. A padding of 0 falls
// back to DefaultPadding.
func (g *Generator) Generate(ctx context.Context, docType DocumentType, year int, padding int) (string, error) {
	prefix, err := docType.prefix()
	if err != nil {
		return "", err
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	counter, err := g.store.ReserveNext(ctx, docType, year)
	if err != nil {
		return "", fmt.Errorf("reserve sequence number: %w", err)
	}
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, padding, counter), nil
}

// PGStore keeps one counter row per (doc_type, year). The upsert increments
// and returns in a single statement, so reservation is atomic under
// concurrent callers (row-level locking on the conflict target).
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) ReserveNext(ctx context.Context, docType DocumentType, year int) (int64, error) {
	var counter int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO number_sequences (doc_type, year, counter)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, year)
		DO UPDATE SET counter = number_sequences.counter + 1
		RETURNING counter
	`, string(docType), year).Scan(&counter)
	if err != nil {
		return 0, err
	}
	return counter, nil
}
