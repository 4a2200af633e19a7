// Package main はKanjouサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"kanjou/internal/camera"
	"kanjou/internal/config"
	"kanjou/internal/emotion"
	"kanjou/internal/logger"
	"kanjou/internal/server"
	"kanjou/internal/vision"
)

func main() {
	// コマンドラインオプション
	var (
		host   = flag.String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
		port   = flag.Int("port", 0, "サーバーのポート (デフォルト: 8080)")
		device = flag.Int("device", -1, "カメラデバイスのインデックス (デフォルト: 0)")
		help   = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("Kanjou")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *device >= 0 {
		cfg.Camera.DeviceID = *device
	}

	logg := logger.New()

	classifier, err := vision.NewClassifier(cfg.Vision.FaceCascadePath, cfg.Vision.EyeCascadePath)
	if err != nil {
		logg.WithError(err).Fatal("分類器の初期化に失敗しました")
	}
	defer classifier.Close()

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

	srv := server.New(cfg, detector, newSource, vision.Annotator{}, logg)

	// サーバーを起動
	log.Printf("Kanjou サーバーを起動します: %s", cfg.ServerAddress())
	if err := srv.Start(context.Background()); err != nil {
		logg.WithError(err).Fatal("サーバーの起動に失敗しました")
	}
}
