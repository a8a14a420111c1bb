package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/http/response"
)

// BrokerStatus is the part of the RabbitMQ connection the health check reads.
type BrokerStatus interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        *sql.DB
	Broker    BrokerStatus
	Storage   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Storage      string            `json:"storage"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db *sql.DB, broker BrokerStatus, storage string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		Broker:    broker,
		Storage:   storage,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		if err := h.DB.PingContext(r.Context()); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.Broker != nil {
		if h.Broker.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	response.JSON(w, code, HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Storage:      h.Storage,
		Dependencies: deps,
	})
}
