package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logging"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envはあれば読む（本番は環境変数だけで動く）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := db.Migrate(gormDB,
		&model.Product{},
		&model.InventoryLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	logRepo := infraRepo.NewInventoryLogGormRepository(gormDB)

	//一覧キャッシュ（REDIS_ADDRがあるときだけ）
	var listCache usecase.ProductListCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewProductListCache(cfg.RedisAddr)
		if err != nil {
			panic(err)
		}
		defer rc.Close()
		listCache = rc
		logger.Info("product list cache enabled", "addr", cfg.RedisAddr)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, logRepo, listCache, logger)
	importUC := usecase.NewImportUsecase(productRepo, listCache, logger)
	exportUC := usecase.NewExportUsecase(productRepo)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	ioH := handler.NewImportExportHandler(importUC, exportUC)

	e := server.New(productH, ioH)

	//Server起動
	addr := ":" + cfg.Port
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	//SIGINT/SIGTERMで止める。接続はシャットダウン時に閉じる。
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
