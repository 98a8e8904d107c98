package main

import (
	"log"

	config "demand-forecast-dashboard/configs"
	"demand-forecast-dashboard/pkg/handlers"

	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// サービスの初期化
	svc, err := handlers.NewServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// 起動時に需要データを一度読み込み、読めなければ起動しない
	prepared, err := svc.Data.LoadMonthlySeries(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to load demand data: %v", err)
	}
	if len(prepared.Series) == 0 {
		log.Printf("⚠️ 集計期間 %s..%s に有効な需要データがありません", cfg.HistoryStart, cfg.HistoryEnd)
	}

	r := handlers.NewRouter(cfg, svc)

	log.Printf("Starting demand forecast dashboard on :%s (model: %s)", cfg.Port, cfg.ModelPath)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
