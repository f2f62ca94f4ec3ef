package repository

import (
	"context"
	"sort"
	"sync"

	"vitalwatch/internal/domain"
)

// MemorySampleRepository: 用于 DB 未就绪时的联测与单元测试
// 与 Postgres 实现保持相同的键语义：(subject_id, ts) 覆盖写。
type MemorySampleRepository struct {
	mu sync.RWMutex

	// subjectID -> ts -> sample
	samples map[string]map[int64]domain.Sample
}

func NewMemorySampleRepository() *MemorySampleRepository {
	return &MemorySampleRepository{
		samples: map[string]map[int64]domain.Sample{},
	}
}

var _ SampleRepository = (*MemorySampleRepository)(nil)

func (r *MemorySampleRepository) Put(_ context.Context, s *domain.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.samples[s.SubjectID] == nil {
		r.samples[s.SubjectID] = map[int64]domain.Sample{}
	}
	cp := *s
	cp.ECG = append([]float64(nil), s.ECG...)
	r.samples[s.SubjectID][s.Timestamp] = cp
	return nil
}

func (r *MemorySampleRepository) Latest(_ context.Context, subjectID string) (*domain.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.samples[subjectID]
	if len(bucket) == 0 {
		return nil, domain.ErrNotFound
	}
	var latest domain.Sample
	first := true
	for _, s := range bucket {
		if first || s.Timestamp > latest.Timestamp {
			latest = s
			first = false
		}
	}
	// 读出的 ECG 也要复制，避免调用方改到存储的底层数组
	latest.ECG = append([]float64(nil), latest.ECG...)
	return &latest, nil
}

func (r *MemorySampleRepository) History(_ context.Context, subjectID string) ([]domain.Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.samples[subjectID]
	if len(bucket) == 0 {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Sample, 0, len(bucket))
	for _, s := range bucket {
		s.ECG = append([]float64(nil), s.ECG...)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}
