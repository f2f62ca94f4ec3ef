package repository

import (
	"context"
	"sort"
	"sync"

	"vitalwatch/internal/domain"
)

// MemoryAlertRepository: 内存版报警记录仓库（测试/无DB联调）
type MemoryAlertRepository struct {
	mu sync.RWMutex

	// subjectID -> ts -> record
	records map[string]map[int64]domain.AlertRecord
}

func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{
		records: map[string]map[int64]domain.AlertRecord{},
	}
}

var _ AlertRepository = (*MemoryAlertRepository)(nil)

func (r *MemoryAlertRepository) Put(_ context.Context, rec *domain.AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.records[rec.SubjectID] == nil {
		r.records[rec.SubjectID] = map[int64]domain.AlertRecord{}
	}
	cp := *rec
	cp.ECG = append([]float64(nil), rec.ECG...)
	r.records[rec.SubjectID][rec.Timestamp] = cp
	return nil
}

func (r *MemoryAlertRepository) ListBySubject(_ context.Context, subjectID string) ([]domain.AlertRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.records[subjectID]
	if len(bucket) == 0 {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.AlertRecord, 0, len(bucket))
	for _, rec := range bucket {
		rec.ECG = append([]float64(nil), rec.ECG...)
		out = append(out, rec)
	}
	// 最近的在前（与 sample history 的升序刻意相反）
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}
