package camera

import (
	"context"
	"errors"
	"testing"
)

func TestMockSource_OpenClose(t *testing.T) {
	ctx := context.Background()
	src := NewMockSource()

	if err := src.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if !src.IsOpened() {
		t.Error("Expected source to be opened")
	}

	// 開いたままの二重取得はデバイス使用中として失敗する
	if err := src.Open(ctx); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable for double open, got %v", err)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Closeは冪等: 二重解放してもエラーにならず、解放回数も増えない
	if err := src.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	if src.OpenCount() != 1 {
		t.Errorf("Expected 1 open, got %d", src.OpenCount())
	}
	if src.CloseCount() != 1 {
		t.Errorf("Expected 1 close, got %d", src.CloseCount())
	}
}

func TestMockSource_Read(t *testing.T) {
	ctx := context.Background()
	src := NewMockSource()

	// 未オープンの読み取りは一時的エラー
	if _, err := src.Read(ctx); !errors.Is(err, ErrFrameRead) {
		t.Errorf("Expected ErrFrameRead before open, got %v", err)
	}

	if err := src.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = src.Close() }()

	src.SetFrame([]byte("frame-data"))
	frame, err := src.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(frame) != "frame-data" {
		t.Errorf("Unexpected frame: %q", frame)
	}

	// 読み取り失敗は ErrFrameRead でラップされ、ハンドルは開いたまま
	src.SetFailRead(true)
	if _, err := src.Read(ctx); !errors.Is(err, ErrFrameRead) {
		t.Errorf("Expected ErrFrameRead, got %v", err)
	}
	if !src.IsOpened() {
		t.Error("Read failure must not tear down the handle")
	}
}

func TestMockSource_FailOpen(t *testing.T) {
	ctx := context.Background()
	src := NewMockSource()
	src.SetFailOpen(true)

	if err := src.Open(ctx); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable, got %v", err)
	}
	if src.IsOpened() {
		t.Error("Source must not be opened after a failed Open")
	}
}

func TestMockSource_ReadCancelled(t *testing.T) {
	src := NewMockSource()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
