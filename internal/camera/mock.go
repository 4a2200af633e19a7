package camera

import (
	"context"
	"fmt"
	"sync"
)

// MockSource はテスト用のSource実装
// 1台の物理デバイスを模しており、開いたまま再度開こうとすると失敗する
type MockSource struct {
	mu sync.Mutex

	opened bool
	frame  []byte

	// テスト制御用
	failOpen bool
	failRead bool

	openCount  int
	closeCount int
	readCount  int
}

// NewMockSource は新しいMockSourceを作成する
func NewMockSource() *MockSource {
	return &MockSource{
		frame: []byte("mock-jpeg-frame"),
	}
}

// Open はモックデバイスを開く
func (m *MockSource) Open(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOpen {
		return fmt.Errorf("%w: モックデバイスを開けません", ErrDeviceUnavailable)
	}
	if m.opened {
		return fmt.Errorf("%w: モックデバイスは使用中です", ErrDeviceUnavailable)
	}

	m.opened = true
	m.openCount++
	return nil
}

// Read は設定済みのフレームを返す
func (m *MockSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return nil, fmt.Errorf("%w: デバイスが開かれていません", ErrFrameRead)
	}
	if m.failRead {
		return nil, fmt.Errorf("%w: モックの読み取り失敗", ErrFrameRead)
	}

	m.readCount++
	frame := make([]byte, len(m.frame))
	copy(frame, m.frame)
	return frame, nil
}

// Close はモックデバイスを解放する（冪等）
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return nil // 既に解放済み
	}

	m.opened = false
	m.closeCount++
	return nil
}

// SetFailOpen はテスト用にOpen失敗を設定する
func (m *MockSource) SetFailOpen(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOpen = fail
}

// SetFailRead はテスト用にRead失敗を設定する
func (m *MockSource) SetFailRead(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = fail
}

// SetFrame はReadが返すフレームを設定する
func (m *MockSource) SetFrame(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = frame
}

// IsOpened は現在開いているかを返す
func (m *MockSource) IsOpened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// OpenCount はOpenが成功した回数を返す
func (m *MockSource) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openCount
}

// CloseCount は実際に解放が行われた回数を返す
func (m *MockSource) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// ReadCount はReadが成功した回数を返す
func (m *MockSource) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCount
}
