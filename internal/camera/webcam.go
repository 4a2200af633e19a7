package camera

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Webcam はgocv (OpenCV) 経由でUSBカメラを制御するSource実装
type Webcam struct {
	deviceID    int
	width       int
	height      int
	readTimeout time.Duration

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	grab   func() ([]byte, error)
	opened bool

	// OpenCVのキャプチャは並行アクセスに安全ではないため、
	// 読み取りは直列化し、解放は滞留中の読み取りの完了を待つ
	readMu   sync.Mutex
	inflight sync.WaitGroup
}

// NewWebcam は新しいWebcamを作成する
func NewWebcam(deviceID, width, height int, readTimeout time.Duration) *Webcam {
	return &Webcam{
		deviceID:    deviceID,
		width:       width,
		height:      height,
		readTimeout: readTimeout,
	}
}

// Open はカメラデバイスを開く
func (w *Webcam) Open(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.opened {
		return nil // 既に開いている
	}

	cap, err := gocv.VideoCaptureDevice(w.deviceID)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", ErrDeviceUnavailable, w.deviceID, err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return fmt.Errorf("%w: device %d", ErrDeviceUnavailable, w.deviceID)
	}

	// 解像度を設定（処理コストを抑えるため）
	cap.Set(gocv.VideoCaptureFrameWidth, float64(w.width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(w.height))

	w.cap = cap
	w.grab = func() ([]byte, error) {
		mat := gocv.NewMat()
		defer mat.Close()

		if ok := cap.Read(&mat); !ok || mat.Empty() {
			return nil, fmt.Errorf("%w: device %d", ErrFrameRead, w.deviceID)
		}

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
		if err != nil {
			return nil, fmt.Errorf("%w: JPEGエンコードに失敗: %v", ErrFrameRead, err)
		}
		defer buf.Close()

		frame := make([]byte, buf.Len())
		copy(frame, buf.GetBytes())
		return frame, nil
	}
	w.opened = true
	return nil
}

type readResult struct {
	frame []byte
	err   error
}

// Read は1フレームを読み取ってJPEGとして返す
// デバイス読み取りがハングしてもキャンセルを妨げないよう、タイムアウト付きで実行する
// タイムアウトした読み取りがデバイス側で完了するまで、次の読み取りは一時的エラーになる
func (w *Webcam) Read(ctx context.Context) ([]byte, error) {
	w.mu.Lock()
	if !w.opened {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: デバイスが開かれていません", ErrFrameRead)
	}
	grab := w.grab

	// 前回のタイムアウトした読み取りがまだキャプチャを使用中なら、
	// 二重にgoroutineを起動せず一時的エラーとして返す
	if !w.readMu.TryLock() {
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: 前回の読み取りがまだ完了していません", ErrFrameRead)
	}
	w.inflight.Add(1)
	w.mu.Unlock()

	ch := make(chan readResult, 1)
	go func() {
		defer w.inflight.Done()
		defer w.readMu.Unlock()

		frame, err := grab()
		ch <- readResult{frame: frame, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(w.readTimeout):
		return nil, fmt.Errorf("%w: 読み取りがタイムアウトしました (%s)", ErrFrameRead, w.readTimeout)
	case res := <-ch:
		return res.frame, res.err
	}
}

// Close はカメラデバイスを解放する（冪等）
// 滞留中の読み取りの完了を待ってから解放し、解放済みキャプチャへのアクセスを防ぐ
func (w *Webcam) Close() error {
	w.mu.Lock()
	if !w.opened {
		w.mu.Unlock()
		return nil // 既に解放済み
	}

	w.opened = false
	cap := w.cap
	w.cap = nil
	w.grab = nil
	w.mu.Unlock()

	w.inflight.Wait()

	if cap == nil {
		return nil
	}
	return cap.Close()
}
