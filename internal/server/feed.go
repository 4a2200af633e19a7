package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kanjou/internal/camera"
	"kanjou/internal/emotion"
)

// mjpegBoundary はmultipartストリームの区切り文字列
const mjpegBoundary = "frame"

// GetVideoFeed はMJPEGストリームを配信するエンドポイント
//
// 検出セッションが動作中であればそのフレームを再利用し、
// 停止中は閲覧者専用のカメラハンドルを開いて配信する。
// 専用ハンドルは閲覧者の切断時に必ず解放される。
func (h *Handler) GetVideoFeed(c *gin.Context) {
	// gammaは契約上受け付けるが、配信フレームには適用しない
	// （補正は検出セッション側の設定で行う）
	var req FeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid_request",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "streaming_unsupported",
			Message:   "ストリーミングに対応していない接続です",
			Timestamp: time.Now(),
		})
		return
	}

	// 検出セッションが動作中ならフレームを共有する
	reuse := h.detector.GetStatus() == emotion.StatusRunning

	var private camera.Source
	if !reuse {
		private = h.newSource()
		if err := private.Open(c.Request.Context()); err != nil {
			h.log.WithError(err).Error("配信用カメラの確保に失敗しました")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:     "camera_unavailable",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		// Closeは冪等なのでdeferで確実に一度だけ解放する
		defer private.Close()
	}

	c.Writer.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	h.log.WithField("reuse", reuse).Info("配信ストリームを開始しました")
	defer h.log.Info("配信ストリームを終了しました")

	clientGone := c.Request.Context().Done()
	ticker := time.NewTicker(h.config.Emotion.FeedInterval())
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
		}

		frame, ok := h.nextFrame(c, reuse, private)
		if !ok {
			return
		}
		if frame == nil {
			// フレームがまだ無い場合は次の周期まで待つ
			continue
		}

		annotated := h.annotator.Annotate(frame, h.detector.Latest())
		if err := writeMJPEGPart(c.Writer, annotated); err != nil {
			return
		}
		flusher.Flush()
	}
}

// nextFrame は次の配信フレームを取得する
// 二つ目の戻り値がfalseのときはストリームを終了する
func (h *Handler) nextFrame(c *gin.Context, reuse bool, private camera.Source) ([]byte, bool) {
	if reuse {
		// 検出セッションが終了したら共有フレームも止まるため配信を閉じる
		if h.detector.GetStatus() != emotion.StatusRunning {
			return nil, false
		}
		frame, ok := h.detector.LatestFrame()
		if !ok {
			return nil, true
		}
		return frame, true
	}

	frame, err := private.Read(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("配信用フレームの読み取りに失敗しました")
		return nil, false
	}
	return frame, true
}

// writeMJPEGPart は1フレームをmultipartパートとして書き込む
func writeMJPEGPart(w http.ResponseWriter, frame []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(frame)); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
