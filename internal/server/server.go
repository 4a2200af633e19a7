package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"kanjou/internal/config"
	"kanjou/internal/emotion"
)

// Annotator はキャッシュのスナップショットを配信フレームへ描画する
type Annotator interface {
	Annotate(frame []byte, snap emotion.Snapshot) []byte
}

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	detector   *emotion.Detector
	log        *logrus.Entry
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, detector *emotion.Detector, newSource emotion.SourceFactory, annotator Annotator, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	handler := &Handler{
		config:    cfg,
		detector:  detector,
		newSource: newSource,
		annotator: annotator,
		log:       log.WithField("component", "handler"),
	}
	registerRoutes(engine, handler)

	return &Server{
		config:   cfg,
		engine:   engine,
		detector: detector,
		httpServer: &http.Server{
			Addr:         cfg.ServerAddress(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		log: log.WithField("component", "server"),
	}
}

// registerRoutes はHTTPルートを設定する
func registerRoutes(engine *gin.Engine, h *Handler) {
	// ヘルスチェックエンドポイント
	engine.GET("/health", h.HealthCheck)

	api := engine.Group("/api")
	api.GET("/status", h.GetStatus)
	api.POST("/emotion/control", h.ControlEmotion)
	api.GET("/emotion/latest", h.GetLatestEmotion)
	api.GET("/video_feed", h.GetVideoFeed)
}

// Engine はテスト用にルーティング済みのginエンジンを返す
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.log.WithField("address", s.config.ServerAddress()).Info("HTTPサーバーを起動しています")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.log.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.log.WithField("signal", sig.String()).Info("シグナルを受信しました")
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
// 動作中の検出セッションも停止してカメラを解放する
func (s *Server) Shutdown() error {
	s.log.Info("サーバーをシャットダウンしています...")

	if err := s.detector.Stop(); err != nil && !errors.Is(err, emotion.ErrAlreadyInactive) {
		s.log.WithError(err).Warn("検出セッションの停止に失敗しました")
	}

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.log.Info("サーバーが正常にシャットダウンされました")
	return nil
}
