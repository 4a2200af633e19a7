package camera

import (
	"context"
	"errors"
)

// ErrDeviceUnavailable はカメラデバイスを開けない場合のエラー
// この失敗はその試行にとって常に致命的で、呼び出し元へそのまま返される
var ErrDeviceUnavailable = errors.New("カメラデバイスが利用できません")

// ErrFrameRead はフレーム読み取りの一時的な失敗を表すエラー
// この失敗だけでハンドルを破棄してはならない
var ErrFrameRead = errors.New("フレームの読み取りに失敗しました")

// Source は全てのフレーム供給源を統一するインターフェース
// ハンドルはプロセス全体で排他的なリソースであり、所有者が責任を持って解放する
type Source interface {
	// Open はデバイスを取得する。失敗は ErrDeviceUnavailable でラップされる
	Open(ctx context.Context) error

	// Read はJPEGエンコード済みの1フレームを取得する
	// 一時的な失敗は ErrFrameRead でラップされる
	Read(ctx context.Context) ([]byte, error)

	// Close はハンドルを解放する。冪等であり、解放済みでも安全に呼び出せる
	Close() error
}
