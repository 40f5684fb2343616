package sequence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quillbooks/quillbooks/internal/shared"
)

type memoryStore struct {
	counters map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counters: make(map[string]int64)}
}

func (s *memoryStore) ReserveNext(ctx context.Context, docType DocumentType, year int) (int64, error) {
	key := fmt.Sprintf("%s:%d", docType, year)
	s.counters[key]++
	return s.counters[key], nil
}

func TestGenerateFormatsReferences(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(newMemoryStore())

	ref, err := gen.Generate(ctx, TypeInvoice, 2026, 0)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-0001", ref)

	ref, err = gen.Generate(ctx, TypeInvoice, 2026, 0)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-0002", ref)

	ref, err = gen.Generate(ctx, TypeQuote, 2025, 3)
	require.NoError(t, err)
	require.Equal(t, "Q-2025-001", ref)
}

func TestGenerateCountersIndependentPerTypeAndYear(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(newMemoryStore())

	_, err := gen.Generate(ctx, TypeInvoice, 2026, 0)
	require.NoError(t, err)

	ref, err := gen.Generate(ctx, TypeQuote, 2026, 0)
	require.NoError(t, err)
	require.Equal(t, "Q-2026-0001", ref)

	ref, err = gen.Generate(ctx, TypeInvoice, 2027, 0)
	require.NoError(t, err)
	require.Equal(t, "INV-2027-0001", ref)
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	_, err := NewGenerator(newMemoryStore()).Generate(context.Background(), "RECEIPT", 2026, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGenerateCounterOverflowsPadding(t *testing.T) {
	store := newMemoryStore()
	gen := NewGenerator(store)
	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		_, err := store.ReserveNext(ctx, TypeInvoice, 2026)
		require.NoError(t, err)
	}
	ref, err := gen.Generate(ctx, TypeInvoice, 2026, 0)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-10001", ref)
}
