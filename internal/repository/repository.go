package repository

import (
	"context"

	"vitalwatch/internal/domain"
)

// SampleRepository 按 (subject_id, ts) 追加生命体征读数
// Put 必须幂等：同 key 重试或重复摄取覆盖而不是新增一行。
type SampleRepository interface {
	Put(ctx context.Context, s *domain.Sample) error

	// Latest returns the sample with the maximum timestamp for the subject.
	// domain.ErrNotFound when the subject has no samples.
	Latest(ctx context.Context, subjectID string) (*domain.Sample, error)

	// History returns all samples for the subject ascending by timestamp.
	// domain.ErrNotFound when empty (indistinguishable from unknown subject).
	History(ctx context.Context, subjectID string) ([]domain.Sample, error)
}

// AlertRepository 按 (subject_id, ts) 追加报警记录
type AlertRepository interface {
	Put(ctx context.Context, rec *domain.AlertRecord) error

	// ListBySubject returns all alert records for the subject DESCENDING by
	// timestamp (most recent first — deliberately the opposite order from
	// sample history). domain.ErrNotFound when none exist.
	ListBySubject(ctx context.Context, subjectID string) ([]domain.AlertRecord, error)
}
