package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := NewMonitoringService()
	router := gin.New()
	router.Use(svc.LoggingMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.POST("/forecast", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })
	router.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "") })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodPost, "/forecast", nil),
		httptest.NewRequest(http.MethodGet, "/metrics", nil),
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	summary := svc.Summarize(1)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.StatusCodes["2xx"])
	assert.Equal(t, 1, summary.StatusCodes["5xx"])
	require.Len(t, summary.Endpoints, 2)
	assert.Equal(t, "/", summary.Endpoints[0].Path)
	assert.Equal(t, "/forecast", summary.Endpoints[1].Path)
	require.Len(t, summary.RecentErrors, 1)
	assert.Equal(t, "/forecast", summary.RecentErrors[0].Path)
	assert.NotEmpty(t, summary.RecentErrors[0].RequestID)
}

func TestLoggingMiddlewareKeepsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := NewMonitoringService()
	router := gin.New()
	router.Use(svc.LoggingMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	require.Len(t, svc.logs, 1)
	assert.Equal(t, "req-123", svc.logs[0].RequestID)
}

func TestSummarizeIgnoresOldEntries(t *testing.T) {
	svc := NewMonitoringService()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.LogRequest(LogEntry{Timestamp: now.Add(-2 * time.Hour), Path: "/", StatusCode: 200})
	svc.LogRequest(LogEntry{Timestamp: now.Add(-10 * time.Minute), Path: "/", StatusCode: 400, ResponseTime: 20 * time.Millisecond})

	summary := svc.Summarize(1)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.StatusCodes["4xx"])
	require.Len(t, summary.Endpoints, 1)
	assert.Equal(t, int64(20), summary.Endpoints[0].AvgResponseMs)

	assert.Equal(t, 2, svc.Summarize(24).Total)
}

func TestLogRequestCapsEntries(t *testing.T) {
	svc := NewMonitoringService()
	for i := 0; i < maxLogEntries+5; i++ {
		svc.LogRequest(LogEntry{Timestamp: time.Now(), Path: "/", StatusCode: 200})
	}
	assert.Len(t, svc.logs, maxLogEntries)
}
