package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandRecord 需要データの1行（重複除去・日付検証・期間フィルタ済み）
type DemandRecord struct {
	Date            time.Time       `json:"date"`
	ProductCode     string          `json:"product_code"`
	Warehouse       string          `json:"warehouse"`
	ProductCategory string          `json:"product_category"`
	OrderDemand     decimal.Decimal `json:"order_demand"`

	// ラベルエンコード後のコード（予測自体には使わない）
	ProductCodeID     int `json:"product_code_id"`
	WarehouseID       int `json:"warehouse_id"`
	ProductCategoryID int `json:"product_category_id"`
}

// SeriesPoint represents a single point of the monthly series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MonthlySeries 月末日付で昇順に並んだ月次需要系列
type MonthlySeries []SeriesPoint

// Last 最後の点を返す（空の場合はfalse）
func (s MonthlySeries) Last() (SeriesPoint, bool) {
	if len(s) == 0 {
		return SeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// Observation ユーザーが入力した最新の実績値
type Observation struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// PreparationStats データ準備の各段階で除外された行数
type PreparationStats struct {
	RowsRead          int `json:"rows_read"`
	DuplicateRows     int `json:"duplicate_rows"`
	InvalidDates      int `json:"invalid_dates"`
	OutOfWindow       int `json:"out_of_window"`
	InvalidQuantities int `json:"invalid_quantities"`
	RowsUsed          int `json:"rows_used"`
	Months            int `json:"months"`
}

// CategoryEncoding カテゴリ列のラベルエンコード結果（クラスの並び順がコード）
type CategoryEncoding struct {
	Column  string   `json:"column"`
	Classes []string `json:"classes"`
}

// PreparedData 需要ファイルから作られた月次系列と付随情報
type PreparedData struct {
	Series    MonthlySeries      `json:"series"`
	Stats     PreparationStats   `json:"stats"`
	Encodings []CategoryEncoding `json:"encodings"`
	Records   []DemandRecord     `json:"-"`
}

// ForecastPoint 予測1か月分（点予測と信頼区間）
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// ForecastResult 予測結果
type ForecastResult struct {
	Points     []ForecastPoint `json:"points"`
	Confidence float64         `json:"confidence"`
	Model      string          `json:"model"`
}

// ForecastRow 表示用の予測行（小数点以下は切り捨て）
type ForecastRow struct {
	Date     string `json:"date"`
	Forecast int64  `json:"forecast"`
	Lower    int64  `json:"lower"`
	Upper    int64  `json:"upper"`
}

// ForecastRequest 予測実行リクエスト（フォーム/JSON共通）
type ForecastRequest struct {
	LastDate   string `json:"last_date" form:"last_date" binding:"required"`
	LastDemand *int64 `json:"last_demand" form:"last_demand" binding:"required,min=0"`
	Months     int    `json:"months" form:"months" binding:"required,min=1"`
}

// ForecastResponse 予測実行レスポンス
type ForecastResponse struct {
	History    MonthlySeries   `json:"history"`
	Forecast   []ForecastPoint `json:"forecast"`
	Table      []ForecastRow   `json:"table"`
	Confidence float64         `json:"confidence"`
	Model      string          `json:"model"`
}
