package services

import (
	"sort"
	"time"

	"demand-forecast-dashboard/pkg/models"
)

// MonthEnd 日付が属する月の末日（UTC 0時）を返す
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
}

// MergeObservation はユーザー入力の実績値を系列に追加します。
// 同じ日時の点がある場合は入力値で上書きします（後勝ち）。元の系列は変更しません。
func MergeObservation(series models.MonthlySeries, obs models.Observation) models.MonthlySeries {
	merged := make(models.MonthlySeries, 0, len(series)+1)
	replaced := false
	for _, p := range series {
		if p.Date.Equal(obs.Date) {
			p.Value = obs.Quantity
			replaced = true
		}
		merged = append(merged, p)
	}
	if !replaced {
		merged = append(merged, models.SeriesPoint{Date: obs.Date, Value: obs.Quantity})
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Date.Before(merged[j].Date)
		})
	}
	return merged
}

// TailSeries 系列の末尾n件を返す
func TailSeries(series models.MonthlySeries, n int) models.MonthlySeries {
	if n <= 0 || len(series) == 0 {
		return models.MonthlySeries{}
	}
	if n >= len(series) {
		return series
	}
	return series[len(series)-n:]
}
