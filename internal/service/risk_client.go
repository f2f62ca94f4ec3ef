package service

import (
	"context"
	"fmt"
	"time"

	"vitalwatch/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RiskRequest 风险评估请求（文本化描述交给模型分类）
type RiskRequest struct {
	SubjectID   string  `json:"subjectId"`
	Temperature float64 `json:"temperature"`
	HeartRate   int     `json:"heartRate"`
	Alert       bool    `json:"alert"`
	Description string  `json:"description"`
}

// RiskResponse 风险评估响应
type RiskResponse struct {
	RiskLevel string `json:"riskLevel"` // "low" / "medium" / "high"
	Rationale string `json:"rationale"`
}

// RiskClient LLM 风险评估服务客户端。
// 纯旁路服务：有界重试，失败由调用方记日志后丢弃，绝不影响摄取结果。
type RiskClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewRiskClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *RiskClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &RiskClient{
		httpClient: client,
		logger:     logger,
	}
}

var _ RiskScorer = (*RiskClient)(nil)

// ScoreSample 请求模型对一条读数做风险分级
func (c *RiskClient) ScoreSample(ctx context.Context, s *domain.Sample) (string, error) {
	request := RiskRequest{
		SubjectID:   s.SubjectID,
		Temperature: s.TemperatureC,
		HeartRate:   s.HeartRateBpm,
		Alert:       s.Alert,
		Description: fmt.Sprintf(
			"Maternal monitoring sample: body temperature %.1f C, estimated heart rate %d bpm, threshold alert=%t.",
			s.TemperatureC, s.HeartRateBpm, s.Alert,
		),
	}

	var response RiskResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/risk-score")
	if err != nil {
		return "", fmt.Errorf("failed to call risk service: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("risk service returned status %d", resp.StatusCode())
	}

	c.logger.Info("risk score received",
		zap.String("subject_id", s.SubjectID),
		zap.String("risk_level", response.RiskLevel),
	)
	return response.RiskLevel, nil
}
