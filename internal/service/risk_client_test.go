package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vitalwatch/internal/domain"
	"vitalwatch/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRiskClient_ScoreSample(t *testing.T) {
	var got service.RiskRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/risk-score", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.RiskResponse{RiskLevel: "high", Rationale: "fever with bradycardia"})
	}))
	defer server.Close()

	client := service.NewRiskClient(server.URL, "test-key", 5*time.Second, zap.NewNop())

	level, err := client.ScoreSample(context.Background(), &domain.Sample{
		SubjectID:    "M1",
		TemperatureC: 38.0,
		HeartRateBpm: 45,
		Alert:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "high", level)
	assert.Equal(t, "M1", got.SubjectID)
	assert.True(t, got.Alert)
	assert.Contains(t, got.Description, "45 bpm")
}

func TestRiskClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := service.NewRiskClient(server.URL, "", 2*time.Second, zap.NewNop())

	_, err := client.ScoreSample(context.Background(), &domain.Sample{SubjectID: "M1"})
	assert.Error(t, err)
}
