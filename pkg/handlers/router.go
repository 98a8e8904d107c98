package handlers

import (
	"net/http"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services ルーターが利用するサービス群
type Services struct {
	Data       *services.DemandDataService
	Forecast   *services.ForecastService
	Chart      *services.ChartService
	Monitoring *services.MonitoringService
}

// NewServices 設定からサービス群を初期化する
func NewServices(cfg *config.Config) (*Services, error) {
	dataService, err := services.NewDemandDataService(cfg.HistoryStart, cfg.HistoryEnd)
	if err != nil {
		return nil, err
	}
	return &Services{
		Data:       dataService,
		Forecast:   services.NewForecastService(cfg.ModelPath, cfg.ConfidenceLevel),
		Chart:      services.NewChartService(),
		Monitoring: services.NewMonitoringService(),
	}, nil
}

// APIKeyAuth X-API-KEYヘッダーを検証する（キー未設定なら素通し）
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// NewRouter はダッシュボードとAPIのルートを登録したGinエンジンを返します。
func NewRouter(cfg *config.Config, svc *Services) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(dashboardTemplates())

	dashboardHandler := NewDashboardHandler(cfg, svc.Data, svc.Forecast, svc.Chart)
	demandForecastHandler := NewDemandForecastHandler(cfg, svc.Data, svc.Forecast, svc.Chart)
	adminHandler := NewAdminHandler(cfg)
	monitoringHandler := NewMonitoringHandler(svc.Monitoring)

	// ミドルウェアの登録
	r.Use(svc.Monitoring.LoggingMiddleware())
	r.Use(cors.Default())

	r.GET("/health", HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ダッシュボード画面
	r.GET("/", dashboardHandler.Index)
	r.POST("/forecast", MaintenanceGuard(), dashboardHandler.RunForecast)

	v1 := r.Group("/api/v1")
	v1.Use(APIKeyAuth(cfg.APIKey))
	{
		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		// 需要予測API
		demand := v1.Group("/demand")
		{
			demand.GET("/history", demandForecastHandler.GetHistory)
			demand.GET("/encodings", demandForecastHandler.GetEncodings)
			demand.GET("/settings", demandForecastHandler.GetSettings)
			demand.POST("/forecast", MaintenanceGuard(), demandForecastHandler.PredictDemand)
			demand.GET("/chart.png", MaintenanceGuard(), demandForecastHandler.GetChart)
		}
	}

	return r
}
