package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"demand-forecast-dashboard/pkg/models"
	"demand-forecast-dashboard/pkg/sarima"
)

// ErrInvalidHorizon 予測期間が1未満
var ErrInvalidHorizon = errors.New("forecast horizon must be at least 1 month")

// ForecastService 学習済みSARIMAモデルを読み込み、将来の月次需要を予測する。
type ForecastService struct {
	modelPath  string
	confidence float64
}

// NewForecastService は新しいForecastServiceを生成します。
func NewForecastService(modelPath string, confidence float64) *ForecastService {
	return &ForecastService{
		modelPath:  modelPath,
		confidence: confidence,
	}
}

// ModelPath モデルファイルのパス
func (s *ForecastService) ModelPath() string {
	return s.modelPath
}

// LoadModel はモデルファイルを毎回読み込みます（キャッシュしない）。
func (s *ForecastService) LoadModel() (*sarima.Model, error) {
	model, err := sarima.Load(s.modelPath)
	if err != nil {
		return nil, fmt.Errorf("SARIMAモデルの読み込みに失敗しました: %w", err)
	}
	return model, nil
}

// Forecast はsteps か月先までの点予測と信頼区間を返します。
func (s *ForecastService) Forecast(model *sarima.Model, steps int) (*models.ForecastResult, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, steps)
	}

	fc, err := model.Forecast(steps, s.confidence)
	if err != nil {
		return nil, err
	}

	dates := model.ForecastDates(steps)
	points := make([]models.ForecastPoint, steps)
	for i := 0; i < steps; i++ {
		points[i] = models.ForecastPoint{
			Date:  dates[i],
			Mean:  fc.Mean[i],
			Lower: fc.Lower[i],
			Upper: fc.Upper[i],
		}
	}

	return &models.ForecastResult{
		Points:     points,
		Confidence: fc.Confidence,
		Model:      model.Order.String(),
	}, nil
}

// Run はユーザーの実績値を履歴に反映し、モデルを読み込んで予測を実行します。
// 予測はモデル自身の学習データに基づき、反映後の履歴は表示用です。
func (s *ForecastService) Run(history models.MonthlySeries, obs models.Observation, steps int) (*models.ForecastResponse, error) {
	start := time.Now()

	if steps < 1 {
		RecordForecast("invalid_horizon", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, steps)
	}

	merged := MergeObservation(history, obs)

	model, err := s.LoadModel()
	if err != nil {
		RecordForecast("model_error", time.Since(start).Seconds())
		return nil, err
	}

	result, err := s.Forecast(model, steps)
	if err != nil {
		RecordForecast("error", time.Since(start).Seconds())
		return nil, err
	}

	elapsed := time.Since(start)
	RecordForecast("success", elapsed.Seconds())
	log.Printf("📈 [予測] %s, %dか月先まで予測しました (%v)", result.Model, steps, elapsed)

	return &models.ForecastResponse{
		History:    merged,
		Forecast:   result.Points,
		Table:      BuildTable(result.Points),
		Confidence: result.Confidence,
		Model:      result.Model,
	}, nil
}

// BuildTable 表示用に整数へ切り捨てた予測表を作る（四捨五入ではなく0方向への切り捨て）
func BuildTable(points []models.ForecastPoint) []models.ForecastRow {
	rows := make([]models.ForecastRow, len(points))
	for i, p := range points {
		rows[i] = models.ForecastRow{
			Date:     p.Date.Format(dateLayout),
			Forecast: int64(p.Mean),
			Lower:    int64(p.Lower),
			Upper:    int64(p.Upper),
		}
	}
	return rows
}
