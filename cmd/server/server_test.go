package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/handlers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)

	// .envファイルを読み込み（テスト環境では無視される可能性がある）
	godotenv.Load("../../.env")

	code := m.Run()
	os.Exit(code)
}

func TestApplicationSetup(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "demand.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(
		"Product_Code,Warehouse,Product_Category,Date,Order_Demand\n"+
			"Product_0001,Whse_J,Category_005,2016/12/3,100\n"), 0o644))

	t.Setenv("DEMAND_DATA_PATH", dataPath)
	t.Setenv("HISTORY_START", "2012-01-01")
	t.Setenv("HISTORY_END", "2016-12-31")

	// 設定の読み込みテスト
	cfg := config.LoadConfig()
	assert.NotNil(t, cfg, "Config should not be nil")
	assert.Equal(t, dataPath, cfg.DataPath)

	// サービスの初期化テスト
	svc, err := handlers.NewServices(cfg)
	require.NoError(t, err)

	prepared, err := svc.Data.LoadMonthlySeries(cfg.DataPath)
	require.NoError(t, err)
	assert.Len(t, prepared.Series, 1)
}

func TestApplicationSetupInvalidWindow(t *testing.T) {
	t.Setenv("HISTORY_START", "2016-12-31")
	t.Setenv("HISTORY_END", "2012-01-01")

	_, err := handlers.NewServices(config.LoadConfig())
	assert.Error(t, err)
}

func TestRouterSetup(t *testing.T) {
	t.Setenv("API_KEY", "")
	cfg := config.LoadConfig()
	svc, err := handlers.NewServices(cfg)
	require.NoError(t, err)

	r := handlers.NewRouter(cfg, svc)

	// ヘルスチェックのテスト
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// 設定APIのテスト
	req, _ = http.NewRequest("GET", "/api/v1/demand/settings", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// メトリクスのテスト
	req, _ = http.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
