package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/barcodeprint/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

type stubPool struct{ stubPinger }

func (stubPool) Stats() (sql.DBStats, error) {
	return sql.DBStats{OpenConnections: 3, InUse: 1, Idle: 2, WaitCount: 7}, nil
}

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("", nil)
	assert.NotNil(t, h)
	assert.False(t, h.started.IsZero())
	assert.Equal(t, "dev", h.version)
}

func TestSystemHandler_GetSystemInfo_PoolStats(t *testing.T) {
	h := NewSystemHandler("1.2.3", stubPool{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	var resp struct {
		Data SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, &PoolStats{Open: 3, InUse: 1, Idle: 2, WaitCount: 7}, resp.Data.DBPool)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("1.2.3", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, ServiceName, data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
	assert.NotContains(t, data, "db_pool")
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("1.0.0", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])

	timestamp := data["timestamp"].(string)
	_, err = time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   HealthResponse
	}{
		{"no database", nil, http.StatusOK, HealthResponse{Status: "healthy", Database: "not configured"}},
		{"database up", stubPinger{}, http.StatusOK, HealthResponse{Status: "healthy", Database: "connected"}},
		{"database down", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable,
			HealthResponse{Status: "unhealthy", Database: "disconnected", Error: "connection refused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("1.0.0", tt.db)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
