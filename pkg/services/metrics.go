package services

import (
	"demand-forecast-dashboard/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// forecastRequests 予測実行回数（status: success, invalid_horizon, model_error, error）
	forecastRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demand_dashboard",
		Subsystem: "forecast",
		Name:      "requests_total",
		Help:      "Total forecast runs by status",
	}, []string{"status"})

	// forecastLatency モデル読込から予測完了までの時間
	forecastLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demand_dashboard",
		Subsystem: "forecast",
		Name:      "latency_seconds",
		Help:      "Forecast run latency in seconds, model load included",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"status"})

	// preparationRows データ準備で処理された行数（outcome別）
	preparationRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demand_dashboard",
		Subsystem: "preparation",
		Name:      "rows_total",
		Help:      "Rows seen by data preparation by outcome",
	}, []string{"outcome"})

	historyMonths = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "demand_dashboard",
		Subsystem: "preparation",
		Name:      "history_months",
		Help:      "Number of months in the most recently prepared series",
	})
)

// RecordForecast 予測1回分の結果を記録する
func RecordForecast(status string, durationSec float64) {
	forecastRequests.WithLabelValues(status).Inc()
	forecastLatency.WithLabelValues(status).Observe(durationSec)
}

// RecordPreparation データ準備の統計を記録する
func RecordPreparation(stats models.PreparationStats) {
	preparationRows.WithLabelValues("duplicate").Add(float64(stats.DuplicateRows))
	preparationRows.WithLabelValues("invalid_date").Add(float64(stats.InvalidDates))
	preparationRows.WithLabelValues("out_of_window").Add(float64(stats.OutOfWindow))
	preparationRows.WithLabelValues("invalid_quantity").Add(float64(stats.InvalidQuantities))
	preparationRows.WithLabelValues("used").Add(float64(stats.RowsUsed))
	historyMonths.Set(float64(stats.Months))
}
