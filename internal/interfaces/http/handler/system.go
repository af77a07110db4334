package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/barcodeprint/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceName is reported by the system endpoints
const ServiceName = "Barcode Print API"

const healthPingTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStatser interface {
	Stats() (sql.DBStats, error)
}

// SystemHandler serves liveness, health and build information
type SystemHandler struct {
	BaseHandler
	started time.Time
	version string
	db      Pinger
}

// NewSystemHandler accepts a nil db, in which case health only reports
// liveness
func NewSystemHandler(version string, db Pinger) *SystemHandler {
	if version == "" {
		version = "dev"
	}
	return &SystemHandler{started: time.Now(), version: version, db: db}
}

// PoolStats summarizes the database connection pool
// @name HandlerPoolStats
type PoolStats struct {
	Open      int   `json:"open"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"wait_count"`
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string     `json:"name" example:"Barcode Print API"`
	Version   string     `json:"version" example:"1.0.0"`
	GoVersion string     `json:"go_version" example:"go1.25.5"`
	Uptime    string     `json:"uptime" example:"1h30m45s"`
	DBPool    *PoolStats `json:"db_pool,omitempty"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Version, uptime and database pool counters
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      ServiceName,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	if s, ok := h.db.(poolStatser); ok {
		if st, err := s.Stats(); err == nil {
			info.DBPool = &PoolStats{Open: st.OpenConnections, InUse: st.InUse, Idle: st.Idle, WaitCount: st.WaitCount}
		}
	}
	h.Success(c, info)
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{Message: "pong", Timestamp: time.Now().Format(time.RFC3339)})
}

// HealthResponse is the body of the health check
// @name HandlerHealthResponse
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"connected"`
	Error    string `json:"error,omitempty"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Liveness plus a database ping. Answers 503 when the database is unreachable.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: "not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: "disconnected", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Database: "connected"})
}
