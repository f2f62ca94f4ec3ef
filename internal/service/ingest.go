package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"vitalwatch/internal/analyzer"
	"vitalwatch/internal/domain"
	"vitalwatch/internal/policy"
	"vitalwatch/internal/repository"
	"vitalwatch/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const latestCacheKeyPrefix = "vital:latest:"

// IngestPayload 设备上报的原始负载
type IngestPayload struct {
	DeviceID    string    `json:"deviceId"`
	SubjectID   string    `json:"subjectId"`
	Temperature float64   `json:"temperature"`
	ECG         []float64 `json:"ecg"`
	Timestamp   int64     `json:"timestamp,omitempty"` // Unix 毫秒，缺省由网关补当前时间
}

// IngestResult 摄取结果（返回给设备）
type IngestResult struct {
	HeartRateBpm int
	Alert        bool
}

// AlertStreamPublisher 报警事件的下游广播（Redis Streams）
type AlertStreamPublisher interface {
	Publish(ctx context.Context, data interface{}) error
}

// RiskScorer 旁路的 LLM 风险评估（best-effort，不在摄取关键路径上）
type RiskScorer interface {
	ScoreSample(ctx context.Context, s *domain.Sample) (string, error)
}

// IngestService 摄取网关：validate → analyze → decide → persist → actuate。
// 步骤4-6不构成一个原子操作，而是一条显式的 saga：每步的键都是确定性的，
// 重试安全；sample 写入是主契约，alert 记录与蜂鸣器指令是 best-effort 的
// 次级效果，失败只记日志不打断请求。
type IngestService struct {
	samples   repository.SampleRepository
	alerts    repository.AlertRepository
	actuators *ActuatorRegistry
	analyzer  *analyzer.Analyzer

	cache          store.KV // 可选：最新读数缓存
	latestCacheTTL time.Duration
	alertStream    AlertStreamPublisher // 可选
	risk           RiskScorer           // 可选
	riskTimeout    time.Duration

	writeAttempts int
	now           func() time.Time
	logger        *zap.Logger
}

// IngestOption 可选依赖的装配
type IngestOption func(*IngestService)

func WithLatestCache(kv store.KV, ttl time.Duration) IngestOption {
	return func(s *IngestService) {
		s.cache = kv
		s.latestCacheTTL = ttl
	}
}

func WithAlertStream(p AlertStreamPublisher) IngestOption {
	return func(s *IngestService) { s.alertStream = p }
}

func WithRiskScorer(r RiskScorer, timeout time.Duration) IngestOption {
	return func(s *IngestService) {
		s.risk = r
		s.riskTimeout = timeout
	}
}

func WithClock(now func() time.Time) IngestOption {
	return func(s *IngestService) { s.now = now }
}

func NewIngestService(
	samples repository.SampleRepository,
	alerts repository.AlertRepository,
	actuators *ActuatorRegistry,
	ecgAnalyzer *analyzer.Analyzer,
	writeAttempts int,
	logger *zap.Logger,
	opts ...IngestOption,
) *IngestService {
	if writeAttempts <= 0 {
		writeAttempts = 3
	}
	s := &IngestService{
		samples:       samples,
		alerts:        alerts,
		actuators:     actuators,
		analyzer:      ecgAnalyzer,
		writeAttempts: writeAttempts,
		riskTimeout:   10 * time.Second,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest 处理一条设备上报。
// 校验失败（ErrInvalidPayload）或分析失败（ErrInvalidInput /
// ErrInsufficientSignal）时不落任何数据；sample 写入失败返回
// ErrStoreUnavailable。
func (s *IngestService) Ingest(ctx context.Context, payload *IngestPayload) (*IngestResult, error) {
	if err := validatePayload(payload); err != nil {
		return nil, err
	}

	ts := payload.Timestamp
	if ts == 0 {
		ts = s.now().UnixMilli()
	}

	bpm, err := s.analyzer.EstimateHeartRate(payload.ECG)
	if err != nil {
		// 不猜测心率：分析失败即摄取失败
		return nil, err
	}

	alert := policy.Evaluate(payload.Temperature, bpm)

	sample := &domain.Sample{
		DeviceID:     payload.DeviceID,
		SubjectID:    payload.SubjectID,
		TemperatureC: payload.Temperature,
		ECG:          payload.ECG,
		Timestamp:    ts,
		HeartRateBpm: bpm,
		Alert:        alert,
	}

	log := s.logger.With(
		zap.String("device_id", sample.DeviceID),
		zap.String("subject_id", sample.SubjectID),
		zap.Int64("ts", sample.Timestamp),
	)

	// step 1/3: sample 写入是主契约，失败整个请求失败
	if err := s.withRetry(ctx, func() error {
		return s.samples.Put(ctx, sample)
	}); err != nil {
		log.Error("saga step failed", zap.String("step", "sample"), zap.Error(err))
		return nil, fmt.Errorf("persist sample: %w", domain.ErrStoreUnavailable)
	}
	log.Info("saga step completed", zap.String("step", "sample"),
		zap.Int("heart_rate", bpm), zap.Bool("alert", alert))

	s.cacheLatest(ctx, sample, log)

	// step 2/3: 报警记录（仅 alert 时），best-effort
	if alert {
		record := &domain.AlertRecord{
			EventID:      uuid.New().String(),
			DeviceID:     sample.DeviceID,
			SubjectID:    sample.SubjectID,
			TemperatureC: sample.TemperatureC,
			ECG:          sample.ECG,
			Timestamp:    sample.Timestamp,
			HeartRateBpm: sample.HeartRateBpm,
			Alert:        true,
			Reason:       domain.AlertReasonECGAndTemp,
		}
		if err := s.withRetry(ctx, func() error {
			return s.alerts.Put(ctx, record)
		}); err != nil {
			log.Warn("saga step failed, continuing", zap.String("step", "alert"), zap.Error(err))
		} else {
			log.Info("saga step completed", zap.String("step", "alert"),
				zap.String("event_id", record.EventID))
			s.publishAlert(ctx, record, log)
		}
	}

	// step 3/3: 蜂鸣器指令，best-effort
	reason := domain.ReasonNormal
	buzzer := domain.BuzzerOff
	if alert {
		reason = domain.AlertReasonECGAndTemp
		buzzer = domain.BuzzerOn
	}
	state := &domain.ActuatorState{
		DeviceID:  sample.DeviceID,
		Buzzer:    buzzer,
		Reason:    reason,
		Timestamp: sample.Timestamp,
	}
	if err := s.withRetry(ctx, func() error {
		return s.actuators.Command(ctx, state)
	}); err != nil {
		log.Warn("saga step failed, continuing", zap.String("step", "actuator"), zap.Error(err))
	} else {
		log.Info("saga step completed", zap.String("step", "actuator"),
			zap.String("buzzer", buzzer))
	}

	s.scoreRiskAsync(sample)

	return &IngestResult{HeartRateBpm: bpm, Alert: alert}, nil
}

func validatePayload(p *IngestPayload) error {
	if p == nil {
		return fmt.Errorf("missing body: %w", domain.ErrInvalidPayload)
	}
	if p.DeviceID == "" {
		return fmt.Errorf("deviceId is required: %w", domain.ErrInvalidPayload)
	}
	if p.SubjectID == "" {
		return fmt.Errorf("subjectId is required: %w", domain.ErrInvalidPayload)
	}
	if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) {
		return fmt.Errorf("temperature must be finite: %w", domain.ErrInvalidPayload)
	}
	if len(p.ECG) == 0 {
		return fmt.Errorf("ecg must be a non-empty sequence: %w", domain.ErrInvalidPayload)
	}
	for _, v := range p.ECG {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ecg values must be finite: %w", domain.ErrInvalidPayload)
		}
	}
	if p.Timestamp < 0 {
		return fmt.Errorf("timestamp must not be negative: %w", domain.ErrInvalidPayload)
	}
	return nil
}

// withRetry 小型有界重试：所有写入的键都是确定性的，重复执行安全
func (s *IngestService) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= s.writeAttempts; attempt++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if attempt == s.writeAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return lastErr
}

// cacheLatest 把最新读数写进 Redis，给看板读路径减压；失败只记日志
func (s *IngestService) cacheLatest(ctx context.Context, sample *domain.Sample, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, latestCacheKeyPrefix+sample.SubjectID, string(data), s.latestCacheTTL); err != nil {
		log.Warn("latest cache write failed", zap.Error(err))
	}
}

func (s *IngestService) publishAlert(ctx context.Context, record *domain.AlertRecord, log *zap.Logger) {
	if s.alertStream == nil {
		return
	}
	if err := s.alertStream.Publish(ctx, record); err != nil {
		log.Warn("alert stream publish failed", zap.Error(err))
	}
}

// scoreRiskAsync 旁路触发 LLM 风险评估，独立 context，不影响请求结果
func (s *IngestService) scoreRiskAsync(sample *domain.Sample) {
	if s.risk == nil {
		return
	}
	cp := *sample
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.riskTimeout)
		defer cancel()
		if _, err := s.risk.ScoreSample(ctx, &cp); err != nil {
			s.logger.Warn("risk scoring failed",
				zap.String("subject_id", cp.SubjectID),
				zap.Error(err),
			)
		}
	}()
}
