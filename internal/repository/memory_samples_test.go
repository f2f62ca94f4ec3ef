package repository

import (
	"context"
	"testing"

	"vitalwatch/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySampleRepository_SameTimestampOverwrites(t *testing.T) {
	repo := NewMemorySampleRepository()
	ctx := context.Background()

	first := &domain.Sample{SubjectID: "M1", DeviceID: "D1", Timestamp: 1000, HeartRateBpm: 70}
	second := &domain.Sample{SubjectID: "M1", DeviceID: "D1", Timestamp: 1000, HeartRateBpm: 80}

	require.NoError(t, repo.Put(ctx, first))
	require.NoError(t, repo.Put(ctx, second))

	history, err := repo.History(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, history, 1) // overwritten, not duplicated
	assert.Equal(t, 80, history[0].HeartRateBpm)
}

func TestMemorySampleRepository_LatestAndOrdering(t *testing.T) {
	repo := NewMemorySampleRepository()
	ctx := context.Background()

	// 乱序写入
	for _, ts := range []int64{3000, 1000, 2000} {
		require.NoError(t, repo.Put(ctx, &domain.Sample{SubjectID: "M1", Timestamp: ts}))
	}

	latest, err := repo.Latest(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), latest.Timestamp)

	history, err := repo.History(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i-1].Timestamp, history[i].Timestamp)
	}
}

func TestMemorySampleRepository_UnknownSubject(t *testing.T) {
	repo := NewMemorySampleRepository()

	_, err := repo.Latest(context.Background(), "unknown-subject")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.History(context.Background(), "unknown-subject")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemorySampleRepository_ReadsDoNotAliasStore(t *testing.T) {
	repo := NewMemorySampleRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &domain.Sample{
		SubjectID: "M1", Timestamp: 1000, ECG: []float64{0.1, 1.0, 0.1},
	}))

	// 调用方改自己拿到的副本，不应污染存储
	latest, err := repo.Latest(ctx, "M1")
	require.NoError(t, err)
	latest.ECG[0] = 99

	history, err := repo.History(ctx, "M1")
	require.NoError(t, err)
	history[0].ECG[1] = 99

	reread, err := repo.Latest(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 1.0, 0.1}, reread.ECG)
}

func TestMemoryAlertRepository_ReadsDoNotAliasStore(t *testing.T) {
	repo := NewMemoryAlertRepository()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &domain.AlertRecord{
		SubjectID: "M1", Timestamp: 1000, ECG: []float64{0.1, 1.0, 0.1},
	}))

	alerts, err := repo.ListBySubject(ctx, "M1")
	require.NoError(t, err)
	alerts[0].ECG[0] = 99

	reread, err := repo.ListBySubject(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 1.0, 0.1}, reread[0].ECG)
}

func TestMemoryAlertRepository_DescendingOrder(t *testing.T) {
	repo := NewMemoryAlertRepository()
	ctx := context.Background()

	for _, ts := range []int64{1000, 3000, 2000} {
		require.NoError(t, repo.Put(ctx, &domain.AlertRecord{
			SubjectID: "M1", Timestamp: ts, Reason: domain.AlertReasonECGAndTemp,
		}))
	}

	alerts, err := repo.ListBySubject(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	for i := 1; i < len(alerts); i++ {
		assert.GreaterOrEqual(t, alerts[i-1].Timestamp, alerts[i].Timestamp)
	}

	_, err = repo.ListBySubject(ctx, "M9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
