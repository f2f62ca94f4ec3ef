package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vitalwatch/internal/domain"
	"vitalwatch/internal/service"

	"go.uber.org/zap"
)

const maxIngestBodyBytes = 1 << 20 // ECG段最大 1 MiB

// Pinger 健康检查探针（DB、Redis）
type Pinger func(ctx context.Context) error

// TelemetryHandler 设备摄取与操作员查询接口
type TelemetryHandler struct {
	ingest    *service.IngestService
	query     *service.QueryService
	actuators *service.ActuatorRegistry
	pingers   map[string]Pinger
	logger    *zap.Logger
}

func NewTelemetryHandler(ingest *service.IngestService, query *service.QueryService, actuators *service.ActuatorRegistry, pingers map[string]Pinger, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		ingest:    ingest,
		query:     query,
		actuators: actuators,
		pingers:   pingers,
		logger:    logger,
	}
}

// POST /iot-data
// body: {deviceId, subjectId, temperature, ecg[], timestamp?}
func (h *TelemetryHandler) IngestIoTData(w http.ResponseWriter, r *http.Request) {
	var payload service.IngestPayload
	if err := readBodyJSON(r, maxIngestBodyBytes, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.ingest.Ingest(r.Context(), &payload)
	if err != nil {
		h.logger.Warn("ingest failed",
			zap.String("device_id", payload.DeviceID),
			zap.String("subject_id", payload.SubjectID),
			zap.Error(err),
		)
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "saved",
		"alert":     result.Alert,
		"heartRate": result.HeartRateBpm,
	})
}

// GET /mother/{subjectId}/latest
func (h *TelemetryHandler) GetLatest(w http.ResponseWriter, r *http.Request, subjectID string) {
	sample, err := h.query.GetLatest(r.Context(), subjectID)
	if err != nil {
		h.writeQueryError(w, subjectID, err)
		return
	}
	writeJSON(w, http.StatusOK, sample)
}

// GET /mother/{subjectId}/history — ascending by timestamp
func (h *TelemetryHandler) GetHistory(w http.ResponseWriter, r *http.Request, subjectID string) {
	history, err := h.query.GetHistory(r.Context(), subjectID)
	if err != nil {
		h.writeQueryError(w, subjectID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// GET /alerts/{subjectId} — descending by timestamp (most recent first)
func (h *TelemetryHandler) GetAlerts(w http.ResponseWriter, r *http.Request, subjectID string) {
	alerts, err := h.query.GetAlerts(r.Context(), subjectID)
	if err != nil {
		h.writeQueryError(w, subjectID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// GET /actuators — 全量蜂鸣器指令状态（设备数量级是病房而非城市，全量可接受）
func (h *TelemetryHandler) ListActuators(w http.ResponseWriter, r *http.Request) {
	states, err := h.actuators.List(r.Context())
	if err != nil {
		h.logger.Error("actuator listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actuators": states})
}

// GET /healthz
func (h *TelemetryHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}
	for name, ping := range h.pingers {
		if err := ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

func (h *TelemetryHandler) writeQueryError(w http.ResponseWriter, subjectID string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for subject "+subjectID)
		return
	}
	h.logger.Error("query failed", zap.String("subject_id", subjectID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// statusForError 错误分类 → HTTP 状态码
// InvalidPayload → 400；分析失败 → 422；存储不可用 → 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInsufficientSignal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
