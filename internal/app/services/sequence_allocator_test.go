package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarcin/docissuer/internal/app/models"
	"github.com/tarcin/docissuer/internal/config"
	"github.com/tarcin/docissuer/internal/pkg/apperrors"
	"go.uber.org/goleak"
)

type seqKey struct {
	year int
	code string
}

// memSequenceStore mimics the single-statement semantics of the SQL store
type memSequenceStore struct {
	mu     sync.Mutex
	values map[seqKey]int
}

func newMemSequenceStore() *memSequenceStore {
	return &memSequenceStore{values: make(map[seqKey]int)}
}

func (s *memSequenceStore) Increment(_ context.Context, year int, code string, by int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[seqKey{year, code}]
	if !ok {
		return 0, false, nil
	}
	v += by
	s.values[seqKey{year, code}] = v
	return v, true, nil
}

func (s *memSequenceStore) InsertInitial(_ context.Context, year int, code string, value int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[seqKey{year, code}]; ok {
		return false, nil
	}
	s.values[seqKey{year, code}] = value
	return true, nil
}

func (s *memSequenceStore) Get(_ context.Context, year int, code string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[seqKey{year, code}]
	return v, ok, nil
}

func (s *memSequenceStore) Set(_ context.Context, year int, code string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value > s.values[seqKey{year, code}] {
		s.values[seqKey{year, code}] = value
	}
	return nil
}

// racingStore always loses the insert race and reports a fixed stored value
type racingStore struct {
	stored     int
	increments int
}

func (s *racingStore) Increment(context.Context, int, string, int) (int, bool, error) {
	s.increments++
	return 0, false, nil
}

func (s *racingStore) InsertInitial(context.Context, int, string, int) (bool, error) {
	return false, nil
}

func (s *racingStore) Get(context.Context, int, string) (int, bool, error) {
	return s.stored, true, nil
}

func (s *racingStore) Set(context.Context, int, string, int) error { return nil }

func newTestAllocator(store SequenceStore, policy string) *SequenceAllocator {
	return NewSequenceAllocator(store, zerolog.Nop(), AllocatorOptions{ConflictPolicy: policy})
}

func TestAllocateNextSequential(t *testing.T) {
	a := newTestAllocator(newMemSequenceStore(), config.ConflictPolicyRetry)
	ctx := context.Background()

	for want := 1; want <= 10; want++ {
		got, err := a.AllocateNext(ctx, 2025, "FSW")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// keys are independent
	got, err := a.AllocateNext(ctx, 2026, "FSW")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestAllocateNextConcurrentFirstUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := newTestAllocator(newMemSequenceStore(), config.ConflictPolicyRetry)
	const callers = 64

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []int
		start   = make(chan struct{})
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := a.AllocateNext(context.Background(), 2025, "ROB")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			results = append(results, v)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, results, callers)
	sort.Ints(results)
	for i, v := range results {
		assert.Equal(t, i+1, v)
	}
}

func TestCommitThenAllocate(t *testing.T) {
	a := newTestAllocator(newMemSequenceStore(), config.ConflictPolicyRetry)
	ctx := context.Background()

	require.NoError(t, a.CommitSequence(ctx, 2025, "FSW", 41))
	got, err := a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	// a stale commit never lowers the counter
	require.NoError(t, a.CommitSequence(ctx, 2025, "FSW", 3))
	got, err = a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)
	assert.Equal(t, 43, got)
}

func TestCommitSequenceIgnoresNonPositive(t *testing.T) {
	store := newMemSequenceStore()
	a := newTestAllocator(store, config.ConflictPolicyRetry)

	require.NoError(t, a.CommitSequence(context.Background(), 2025, "FSW", 0))
	_, found, _ := store.Get(context.Background(), 2025, "FSW")
	assert.False(t, found)
}

func TestAllocateRange(t *testing.T) {
	a := newTestAllocator(newMemSequenceStore(), config.ConflictPolicyRetry)
	ctx := context.Background()

	first, err := a.AllocateRange(ctx, 2025, "FSW", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	first, err = a.AllocateRange(ctx, 2025, "FSW", 3)
	require.NoError(t, err)
	assert.Equal(t, 6, first)

	next, err := a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)
	assert.Equal(t, 9, next)

	_, err = a.AllocateRange(ctx, 2025, "FSW", 0)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAllocatedValueFormatsAsCertificateID(t *testing.T) {
	store := newMemSequenceStore()
	a := newTestAllocator(store, config.ConflictPolicyRetry)
	ctx := context.Background()

	require.NoError(t, a.CommitSequence(ctx, 2025, "FSW", 6))
	seq, err := a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)
	assert.Equal(t, "TR-2025/FSW/00007", models.FormatCertificateID("TR", 2025, "FSW", seq))
}

func TestLegacyPolicyReturnsUnpersistedValue(t *testing.T) {
	store := &racingStore{stored: 3}
	a := newTestAllocator(store, config.ConflictPolicyLegacy)
	ctx := context.Background()

	first, err := a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)
	second, err := a.AllocateNext(ctx, 2025, "FSW")
	require.NoError(t, err)

	// two callers losing the same race observe the same value
	assert.Equal(t, 4, first)
	assert.Equal(t, first, second)
}

func TestRetryPolicyExhausts(t *testing.T) {
	store := &racingStore{stored: 3}
	a := NewSequenceAllocator(store, zerolog.Nop(), AllocatorOptions{MaxAttempts: 3})

	_, err := a.AllocateNext(context.Background(), 2025, "FSW")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSequenceExhausted)

	var exhausted *SequenceExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, 3, store.increments)
}

func TestAllocateHonoursCancellation(t *testing.T) {
	store := &racingStore{}
	a := newTestAllocator(store, config.ConflictPolicyRetry)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.AllocateNext(ctx, 2025, "FSW")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.increments)
}

func TestAllocateValidatesKey(t *testing.T) {
	a := newTestAllocator(newMemSequenceStore(), config.ConflictPolicyRetry)

	_, err := a.AllocateNext(context.Background(), 0, "FSW")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = a.AllocateNext(context.Background(), 2025, "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

type failingSequenceStore struct{ racingStore }

func (failingSequenceStore) Increment(context.Context, int, string, int) (int, bool, error) {
	return 0, false, errors.New("connection reset")
}

func TestAllocatePropagatesStoreErrors(t *testing.T) {
	a := newTestAllocator(&failingSequenceStore{}, config.ConflictPolicyRetry)

	_, err := a.AllocateNext(context.Background(), 2025, "FSW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotErrorIs(t, err, apperrors.ErrSequenceExhausted)
}
