package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxLogEntries 保持するリクエストログの上限（古いものから破棄）
const maxLogEntries = 10000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	RequestID    string        `json:"request_id"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService はダッシュボードへのリクエストを記録します。
type MonitoringService struct {
	logs        []LogEntry
	mu          sync.RWMutex
	excludePath []string
	now         func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs:        make([]LogEntry, 0),
		excludePath: []string{"/api/v1/admin", "/api/v1/monitoring", "/metrics", "/health"},
		now:         time.Now,
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Next()

		path := c.Request.URL.Path
		for _, prefix := range s.excludePath {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		s.LogRequest(LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// EndpointStats エンドポイント別の集計
type EndpointStats struct {
	Path           string `json:"path"`
	Requests       int    `json:"requests"`
	AvgResponseMs  int64  `json:"avg_response_ms"`
	ServerErrors   int    `json:"server_errors"`
	ClientErrors   int    `json:"client_errors"`
	LastStatusCode int    `json:"last_status_code"`
}

// LogSummary は指定期間のリクエストログの集計結果です。
type LogSummary struct {
	PeriodHours  int             `json:"period_hours"`
	Total        int             `json:"total"`
	Endpoints    []EndpointStats `json:"endpoints"`
	StatusCodes  map[string]int  `json:"status_codes"`
	RecentErrors []LogEntry      `json:"recent_errors"`
}

// Summarize は直近periodHours時間のログを集計します。
func (s *MonitoringService) Summarize(periodHours int) LogSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.now().Add(-time.Duration(periodHours) * time.Hour)

	summary := LogSummary{
		PeriodHours: periodHours,
		StatusCodes: map[string]int{"2xx": 0, "4xx": 0, "5xx": 0},
	}
	byPath := make(map[string]*EndpointStats)
	totals := make(map[string]time.Duration)

	for _, entry := range s.logs {
		if entry.Timestamp.Before(since) {
			continue
		}
		summary.Total++

		st, ok := byPath[entry.Path]
		if !ok {
			st = &EndpointStats{Path: entry.Path}
			byPath[entry.Path] = st
		}
		st.Requests++
		st.LastStatusCode = entry.StatusCode
		totals[entry.Path] += entry.ResponseTime

		switch {
		case entry.StatusCode >= 500:
			summary.StatusCodes["5xx"]++
			st.ServerErrors++
		case entry.StatusCode >= 400:
			summary.StatusCodes["4xx"]++
			st.ClientErrors++
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			summary.StatusCodes["2xx"]++
		}
	}

	for path, st := range byPath {
		st.AvgResponseMs = totals[path].Milliseconds() / int64(st.Requests)
		summary.Endpoints = append(summary.Endpoints, *st)
	}
	sort.Slice(summary.Endpoints, func(i, j int) bool {
		return summary.Endpoints[i].Path < summary.Endpoints[j].Path
	})

	// 新しい順に最大10件
	for i := len(s.logs) - 1; i >= 0 && len(summary.RecentErrors) < 10; i-- {
		if s.logs[i].StatusCode >= 500 && !s.logs[i].Timestamp.Before(since) {
			summary.RecentErrors = append(summary.RecentErrors, s.logs[i])
		}
	}

	return summary
}
