package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/models"
	"demand-forecast-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

// DemandForecastHandler 需要データと予測のJSON API
type DemandForecastHandler struct {
	cfg             *config.Config
	dataService     *services.DemandDataService
	forecastService *services.ForecastService
	chartService    *services.ChartService
}

// NewDemandForecastHandler 新しい需要予測ハンドラーを作成
func NewDemandForecastHandler(
	cfg *config.Config,
	dataService *services.DemandDataService,
	forecastService *services.ForecastService,
	chartService *services.ChartService,
) *DemandForecastHandler {
	return &DemandForecastHandler{
		cfg:             cfg,
		dataService:     dataService,
		forecastService: forecastService,
		chartService:    chartService,
	}
}

// GetHistory 月次需要系列を取得（tail=0 で全件）
func (h *DemandForecastHandler) GetHistory(c *gin.Context) {
	tail := h.cfg.HistoryTail
	if tailStr := c.Query("tail"); tailStr != "" {
		n, err := strconv.Atoi(tailStr)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "tail は0以上の整数で指定してください"})
			return
		}
		tail = n
	}

	prepared, err := h.dataService.LoadMonthlySeries(h.cfg.DataPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	series := prepared.Series
	if tail > 0 {
		series = services.TailSeries(series, tail)
	}

	start, end := h.dataService.Window()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"series": series,
			"stats":  prepared.Stats,
			"window": gin.H{
				"start": start.Format("2006-01-02"),
				"end":   end.Format("2006-01-02"),
			},
		},
		"count": len(series),
	})
}

// GetEncodings カテゴリ列のラベルエンコード結果を取得
func (h *DemandForecastHandler) GetEncodings(c *gin.Context) {
	prepared, err := h.dataService.LoadMonthlySeries(h.cfg.DataPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prepared.Encodings,
	})
}

// GetSettings 予測設定を取得
func (h *DemandForecastHandler) GetSettings(c *gin.Context) {
	start, end := h.dataService.Window()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"forecast_range": gin.H{
				"min_months":     1,
				"max_months":     h.cfg.MaxHorizon,
				"default_months": h.cfg.DefaultHorizon,
			},
			"confidence_level": h.cfg.ConfidenceLevel,
			"history_window": gin.H{
				"start": start.Format("2006-01-02"),
				"end":   end.Format("2006-01-02"),
			},
			"model_path": h.forecastService.ModelPath(),
		},
	})
}

// PredictDemand 需要予測を実行
func (h *DemandForecastHandler) PredictDemand(c *gin.Context) {
	var request models.ForecastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの解析に失敗しました: " + err.Error(),
		})
		return
	}

	response, status, err := h.run(request)
	if err != nil {
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// GetChart 履歴と予測を重ねたグラフをPNGで返す
func (h *DemandForecastHandler) GetChart(c *gin.Context) {
	var request models.ForecastRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "クエリの解析に失敗しました: " + err.Error(),
		})
		return
	}

	response, status, err := h.run(request)
	if err != nil {
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	png, err := h.chartService.RenderPNG(response.History, response.Forecast)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// run 履歴を読み直し、実績値を反映して予測する。失敗時はHTTPステータスも返す。
func (h *DemandForecastHandler) run(request models.ForecastRequest) (*models.ForecastResponse, int, error) {
	obs, err := observationFromRequest(request, h.cfg.MaxHorizon)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	prepared, err := h.dataService.LoadMonthlySeries(h.cfg.DataPath)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	response, err := h.forecastService.Run(prepared.Series, obs, request.Months)
	if err != nil {
		return nil, errorStatus(err), err
	}
	return response, http.StatusOK, nil
}

// observationFromRequest リクエストを検証して実績値に変換する
func observationFromRequest(request models.ForecastRequest, maxHorizon int) (models.Observation, error) {
	if request.Months < 1 || request.Months > maxHorizon {
		return models.Observation{}, fmt.Errorf("%w: months は1〜%dで指定してください", services.ErrInvalidHorizon, maxHorizon)
	}
	if request.LastDemand == nil || *request.LastDemand < 0 {
		return models.Observation{}, errors.New("last_demand は0以上の整数で指定してください")
	}
	date, err := time.Parse("2006-01-02", request.LastDate)
	if err != nil {
		return models.Observation{}, fmt.Errorf("last_date の形式が不正です (YYYY-MM-DD): %w", err)
	}
	return models.Observation{Date: date, Quantity: float64(*request.LastDemand)}, nil
}

// errorStatus エラー種別をHTTPステータスに対応付ける
func errorStatus(err error) int {
	if errors.Is(err, services.ErrInvalidHorizon) {
		return http.StatusBadRequest
	}
	// モデルの欠落・破損を含め、それ以外はサーバー側の問題
	return http.StatusInternalServerError
}
