package camera

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// blockedWebcam は読み取りがハングするデバイスを模したWebcamを返す
// releaseを閉じるとハングしていた読み取りが完了する
func blockedWebcam(timeout time.Duration) (*Webcam, chan struct{}, *atomic.Int32) {
	release := make(chan struct{})
	var calls atomic.Int32

	w := NewWebcam(0, 640, 480, timeout)
	w.opened = true
	w.grab = func() ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("frame"), nil
	}
	return w, release, &calls
}

func TestWebcam_ReadBeforeOpen(t *testing.T) {
	w := NewWebcam(0, 640, 480, time.Second)

	if _, err := w.Read(context.Background()); !errors.Is(err, ErrFrameRead) {
		t.Errorf("Expected ErrFrameRead before open, got %v", err)
	}
}

func TestWebcam_CloseBeforeOpen(t *testing.T) {
	w := NewWebcam(0, 640, 480, time.Second)

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// 冪等
	if err := w.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}

func TestWebcam_TimedOutReadDoesNotOverlap(t *testing.T) {
	w, release, calls := blockedWebcam(10 * time.Millisecond)
	defer close(release)

	ctx := context.Background()

	// ハングした読み取りはタイムアウトする
	if _, err := w.Read(ctx); !errors.Is(err, ErrFrameRead) {
		t.Fatalf("Expected ErrFrameRead on timeout, got %v", err)
	}

	// 前の読み取りがデバイスを使用中の間、次の読み取りは
	// キャプチャへ並行アクセスせず一時的エラーになる
	if _, err := w.Read(ctx); !errors.Is(err, ErrFrameRead) {
		t.Fatalf("Expected ErrFrameRead while previous read in flight, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 device read in flight, got %d", got)
	}
}

func TestWebcam_CloseWaitsForInFlightRead(t *testing.T) {
	w, release, _ := blockedWebcam(10 * time.Millisecond)

	if _, err := w.Read(context.Background()); !errors.Is(err, ErrFrameRead) {
		t.Fatalf("Expected ErrFrameRead on timeout, got %v", err)
	}

	// Closeはハングしている読み取りが完了するまで解放を待つ
	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case <-closed:
		t.Fatal("Close must not return while a read is still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the read completed")
	}
}

func TestWebcam_ReadAfterReleaseCompletes(t *testing.T) {
	w, release, _ := blockedWebcam(10 * time.Millisecond)

	if _, err := w.Read(context.Background()); !errors.Is(err, ErrFrameRead) {
		t.Fatalf("Expected ErrFrameRead on timeout, got %v", err)
	}
	close(release)

	// ハングが解消すれば次の読み取りは成功する
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		frame, err := w.Read(context.Background())
		if err == nil {
			if string(frame) != "frame" {
				t.Fatalf("Unexpected frame: %q", frame)
			}
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Read never recovered after the in-flight read completed")
}
