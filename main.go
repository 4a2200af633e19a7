package main

import (
	"context"
	"log"

	"kanjou/internal/camera"
	"kanjou/internal/config"
	"kanjou/internal/emotion"
	"kanjou/internal/logger"
	"kanjou/internal/server"
	"kanjou/internal/vision"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// ロガーを初期化
	logg := logger.New()

	// 分類器を初期化（カスケードファイルが無ければ起動しない）
	classifier, err := vision.NewClassifier(cfg.Vision.FaceCascadePath, cfg.Vision.EyeCascadePath)
	if err != nil {
		logg.WithError(err).Fatal("分類器の初期化に失敗しました")
	}
	defer classifier.Close()

	// カメラは検出セッションごとにファクトリから生成する
	newSource := func() camera.Source {
		return camera.NewWebcam(cfg.Camera.DeviceID, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.ReadTimeout)
	}

	detector := emotion.NewDetector(emotion.Config{
		Interval:        cfg.Emotion.DetectInterval(),
		ClassifyEvery:   cfg.Emotion.ClassifyEvery,
		SmoothingWindow: cfg.Emotion.SmoothingWindow,
		CacheTimeout:    cfg.Emotion.CacheTimeout,
		MaxReadFailures: cfg.Emotion.MaxReadFailures,
		DefaultGamma:    cfg.Emotion.DefaultGamma,
	}, newSource, classifier.Detect, logg)

	// サーバーを作成
	srv := server.New(cfg, detector, newSource, &vision.Annotator{}, logg)

	// サーバーを起動
	if err := srv.Start(context.Background()); err != nil {
		logg.WithError(err).Fatal("サーバーの起動に失敗しました")
	}
}
