package handler

import (
	"log"
	"net/http"
	"sync"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/handlers"

	"github.com/gin-gonic/gin"
)

var (
	app     *gin.Engine
	initErr error
	once    sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		// 環境変数はデプロイ先の設定から読み込まれるため、godotenvは使わない
		cfg := config.LoadConfig()

		svc, err := handlers.NewServices(cfg)
		if err != nil {
			initErr = err
			return
		}
		app = handlers.NewRouter(cfg, svc)
		log.Printf("🟢 [setupApp] Initialized (data: %s, model: %s)", cfg.DataPath, cfg.ModelPath)
	})
	return app, initErr
}

// Handler はサーバーレス関数のエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	engine, err := setupApp()
	if err != nil {
		log.Printf("❌ [setupApp] %v", err)
		http.Error(w, "service initialization failed", http.StatusInternalServerError)
		return
	}
	engine.ServeHTTP(w, r)
}
