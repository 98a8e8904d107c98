package handlers

import (
	"embed"
	"encoding/base64"
	"html/template"
	"log"
	"net/http"
	"time"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/models"
	"demand-forecast-dashboard/pkg/services"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// dashboardTemplates ダッシュボード画面のテンプレート
func dashboardTemplates() *template.Template {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"trunc": func(v float64) int64 { return int64(v) },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// dashboardForm サイドバーの入力値
type dashboardForm struct {
	LastDate   string
	LastDemand int64
	Months     int
}

// dashboardView 画面描画用のデータ
type dashboardView struct {
	HasData    bool
	History    models.MonthlySeries
	Stats      models.PreparationStats
	Form       dashboardForm
	MaxHorizon int
	Result     *models.ForecastResponse
	ChartURI   template.URL
	Error      string
}

// DashboardHandler 対話型の予測ダッシュボード（HTML）
type DashboardHandler struct {
	cfg             *config.Config
	dataService     *services.DemandDataService
	forecastService *services.ForecastService
	chartService    *services.ChartService
}

// NewDashboardHandler は新しいDashboardHandlerを生成します。
func NewDashboardHandler(
	cfg *config.Config,
	dataService *services.DemandDataService,
	forecastService *services.ForecastService,
	chartService *services.ChartService,
) *DashboardHandler {
	return &DashboardHandler{
		cfg:             cfg,
		dataService:     dataService,
		forecastService: forecastService,
		chartService:    chartService,
	}
}

// Index 直近の履歴と入力フォームを表示する
func (h *DashboardHandler) Index(c *gin.Context) {
	view, _, ok := h.loadView(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "dashboard.tmpl", view)
}

// RunForecast フォームの値で予測を実行し、表とグラフを表示する
func (h *DashboardHandler) RunForecast(c *gin.Context) {
	view, prepared, ok := h.loadView(c)
	if !ok {
		return
	}

	var request models.ForecastRequest
	if err := c.ShouldBind(&request); err != nil {
		view.Error = "入力値が不正です: " + err.Error()
		c.HTML(http.StatusBadRequest, "dashboard.tmpl", view)
		return
	}
	view.Form = dashboardForm{LastDate: request.LastDate, LastDemand: *request.LastDemand, Months: request.Months}

	obs, err := observationFromRequest(request, h.cfg.MaxHorizon)
	if err != nil {
		view.Error = err.Error()
		c.HTML(http.StatusBadRequest, "dashboard.tmpl", view)
		return
	}

	response, err := h.forecastService.Run(prepared.Series, obs, request.Months)
	if err != nil {
		log.Printf("❌ [予測] %v", err)
		view.Error = "予測の実行に失敗しました: " + err.Error()
		c.HTML(errorStatus(err), "dashboard.tmpl", view)
		return
	}
	view.Result = response
	// 履歴表は読み込んだ系列のまま、上書きした実績値はグラフにだけ反映する

	svg, err := h.chartService.RenderSVG(response.History, response.Forecast)
	if err != nil {
		log.Printf("⚠️ [グラフ] %v", err)
	} else {
		view.ChartURI = template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", view)
}

// loadView 需要ファイルを毎回読み直して初期表示用のデータを作る。
// 読み込みに失敗した場合はエラー画面を描画してfalseを返す。
func (h *DashboardHandler) loadView(c *gin.Context) (dashboardView, *models.PreparedData, bool) {
	view := dashboardView{
		MaxHorizon: h.cfg.MaxHorizon,
		Form: dashboardForm{
			LastDate: time.Now().UTC().Format("2006-01-02"),
			Months:   h.cfg.DefaultHorizon,
		},
	}

	prepared, err := h.dataService.LoadMonthlySeries(h.cfg.DataPath)
	if err != nil {
		log.Printf("❌ [データ準備] %v", err)
		view.Error = "需要データを読み込めませんでした: " + err.Error()
		c.HTML(http.StatusInternalServerError, "dashboard.tmpl", view)
		return view, nil, false
	}

	view.Stats = prepared.Stats
	view.History = services.TailSeries(prepared.Series, h.cfg.HistoryTail)
	if last, ok := prepared.Series.Last(); ok {
		view.HasData = true
		view.Form.LastDate = last.Date.Format("2006-01-02")
		view.Form.LastDemand = int64(last.Value)
	}
	return view, prepared, true
}
