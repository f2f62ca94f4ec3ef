package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterTelemetryRoutes 注册设备摄取与查询路由
func (r *Router) RegisterTelemetryRoutes(h *TelemetryHandler) {
	// ingest
	r.Handle("/iot-data", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.IngestIoTData(w, req)
	})

	// mother/{subjectId}/latest | mother/{subjectId}/history
	r.Handle("/mother/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/mother/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		subjectID := parts[0]
		switch parts[1] {
		case "latest":
			h.GetLatest(w, req, subjectID)
		case "history":
			h.GetHistory(w, req, subjectID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// alerts/{subjectId}
	r.Handle("/alerts/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		subjectID := strings.TrimPrefix(req.URL.Path, "/alerts/")
		if subjectID == "" || strings.Contains(subjectID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetAlerts(w, req, subjectID)
	})

	// actuators（全量蜂鸣器状态）
	r.Handle("/actuators", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListActuators(w, req)
	})

	r.Handle("/healthz", h.Healthz)
}
