package service

import (
	"context"

	"vitalwatch/internal/domain"
	"vitalwatch/internal/repository"

	"go.uber.org/zap"
)

// QueryService 读侧：最新读数、历史、报警历史。
// 排序约定是公开契约的一部分：history 升序，alerts 降序（最近的在前）。
type QueryService struct {
	samples repository.SampleRepository
	alerts  repository.AlertRepository
	logger  *zap.Logger
}

func NewQueryService(samples repository.SampleRepository, alerts repository.AlertRepository, logger *zap.Logger) *QueryService {
	return &QueryService{
		samples: samples,
		alerts:  alerts,
		logger:  logger,
	}
}

// GetLatest 返回时间戳最大的一条读数；无数据时 domain.ErrNotFound
func (s *QueryService) GetLatest(ctx context.Context, subjectID string) (*domain.Sample, error) {
	return s.samples.Latest(ctx, subjectID)
}

// GetHistory 返回该subject全部读数，按时间戳升序；
// 空结果与未知subject都返回 domain.ErrNotFound
func (s *QueryService) GetHistory(ctx context.Context, subjectID string) ([]domain.Sample, error) {
	return s.samples.History(ctx, subjectID)
}

// GetAlerts 返回该subject全部报警记录，按时间戳降序（与 GetHistory 刻意相反）；
// 无报警时 domain.ErrNotFound
func (s *QueryService) GetAlerts(ctx context.Context, subjectID string) ([]domain.AlertRecord, error) {
	return s.alerts.ListBySubject(ctx, subjectID)
}
