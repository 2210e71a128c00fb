package feez

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, created time.Time) *TransactionRecord {
	return &TransactionRecord{
		ID:            id,
		TxHash:        "0x" + id,
		Chain:         "Base",
		WalletAddress: testSender,
		Action:        ActionMintNFT,
		GasFeeUSDC:    0.5,
		GasFeeNative:  0.0005,
		NativeToken:   "ETH",
		Status:        StatusPending,
		CreatedAt:     created,
	}
}

func TestInMemoryStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	rec := testRecord("tx-1", time.Now().UTC())
	require.NoError(t, s.Create(ctx, rec))

	got, err := s.Get(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.TxHash, got.TxHash)

	// Mutating the returned copy must not touch the stored record.
	got.Status = StatusFailed
	again, err := s.Get(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = s.Create(ctx, testRecord("tx-1", time.Now().UTC()))
	require.Error(t, err, "duplicate id must fail")
}

func TestInMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("tx-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Create(ctx, rec))
	}

	records, total, err := s.List(ctx, TransactionFilter{WalletAddress: testSender})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, records, 5)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].CreatedAt.After(records[i-1].CreatedAt),
			"records must be ordered newest-first")
	}
}

func TestInMemoryStorePagination(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Now().UTC()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.Create(ctx, testRecord(fmt.Sprintf("tx-%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	records, total, err := s.List(ctx, TransactionFilter{Limit: 3, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, records, 2)

	records, _, err = s.List(ctx, TransactionFilter{Limit: 3, Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInMemoryStoreFilters(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	now := time.Now().UTC()

	a := testRecord("a", now)
	a.Chain = "Base"
	a.Status = StatusConfirmed
	b := testRecord("b", now.Add(-48*time.Hour))
	b.Chain = "Polygon"
	c := testRecord("c", now)
	c.WalletAddress = testRecipient
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	require.NoError(t, s.Create(ctx, c))

	records, total, err := s.List(ctx, TransactionFilter{WalletAddress: testSender, Chain: "Polygon"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].ID)

	records, _, err = s.List(ctx, TransactionFilter{WalletAddress: testSender, Status: StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)

	records, _, err = s.List(ctx, TransactionFilter{WalletAddress: testSender, Since: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestInMemoryStoreUpdateStatusSingleTransition(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	require.NoError(t, s.Create(ctx, testRecord("tx-1", time.Now().UTC())))

	require.NoError(t, s.UpdateStatus(ctx, "tx-1", StatusPending, StatusConfirmed))

	got, err := s.Get(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got.Status)
	assert.NotNil(t, got.ConfirmedAt)

	// A second transition must not land.
	err = s.UpdateStatus(ctx, "tx-1", StatusPending, StatusFailed)
	require.Error(t, err)
	got, _ = s.Get(ctx, "tx-1")
	assert.Equal(t, StatusConfirmed, got.Status)

	err = s.UpdateStatus(ctx, "missing", StatusPending, StatusConfirmed)
	require.Error(t, err)
}

func TestInMemoryStoreConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Create(ctx, testRecord(fmt.Sprintf("tx-%d", i), now))
		}(i)
	}
	wg.Wait()

	_, total, err := s.List(ctx, TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(50), total)
}
