package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"kanjou/internal/camera"
	"kanjou/internal/config"
	"kanjou/internal/emotion"
)

// Handler はHTTPリクエストを処理する構造体
type Handler struct {
	config    *config.Config
	detector  *emotion.Detector
	newSource emotion.SourceFactory
	annotator Annotator
	log       *logrus.Entry
}

// HealthCheck はヘルスチェックエンドポイント
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// GetStatus はサーバーと検出ループの状態を返す
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host: h.config.Server.Host,
			Port: h.config.Server.Port,
		},
		Detector:  string(h.detector.GetStatus()),
		Timestamp: time.Now(),
	})
}

// ControlEmotion は検出セッションの起動・停止を制御する
//
// 起動・停止は冪等で、既に目的の状態にある場合もHTTP 200で
// その旨のメッセージを返す。カメラが確保できない場合のみ503になる。
func (h *Handler) ControlEmotion(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid_request",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if req.Active {
		h.startDetection(c, req.Gamma)
		return
	}
	h.stopDetection(c)
}

func (h *Handler) startDetection(c *gin.Context, gamma float64) {
	if gamma <= 0 {
		gamma = h.config.Emotion.DefaultGamma
	}

	err := h.detector.Start(gamma)
	switch {
	case errors.Is(err, emotion.ErrAlreadyActive):
		c.JSON(http.StatusOK, ControlResponse{Message: "Emotion detection already active."})
	case errors.Is(err, camera.ErrDeviceUnavailable):
		h.log.WithError(err).Error("カメラデバイスの確保に失敗しました")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:     "camera_unavailable",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	case err != nil:
		h.log.WithError(err).Error("検出セッションの起動に失敗しました")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "start_failed",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
	default:
		h.log.WithField("gamma", gamma).Info("検出セッションを起動しました")
		c.JSON(http.StatusOK, ControlResponse{Message: "Emotion detection starting."})
	}
}

func (h *Handler) stopDetection(c *gin.Context) {
	if err := h.detector.Stop(); errors.Is(err, emotion.ErrAlreadyInactive) {
		c.JSON(http.StatusOK, ControlResponse{Message: "Emotion detection already inactive."})
		return
	}
	h.log.Info("検出セッションの停止を要求しました")
	c.JSON(http.StatusOK, ControlResponse{Message: "Emotion detection stopping."})
}

// GetLatestEmotion は最新の平滑化済み検出結果を返す
// ループを経由せずキャッシュから直接読むため、検出の周期に影響しない
func (h *Handler) GetLatestEmotion(c *gin.Context) {
	snap := h.detector.Latest()
	c.JSON(http.StatusOK, LatestResponse{
		DominantEmotion: snap.Label,
		Score:           snap.Score,
		Active:          snap.Active,
		Stale:           snap.Stale,
	})
}
