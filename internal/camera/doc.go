// Package camera カメラデバイスの取得・読み取り・解放を担う
//
// # 責務
// - カメラデバイスへの排他的なハンドルの管理
// - JPEGエンコード済みフレームの取得
// - 冪等なハンドル解放（二重解放してもデバイスを壊さない）
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 検出ループや配信ストリームがカメラからフレームを取得したい
// - デバイスの取得失敗と一時的な読み取り失敗を区別したい
//
// # 仕様
// - Source: 全てのフレーム供給源を統一するインターフェース
// - Webcam: gocv (OpenCV) 経由のUSBカメラ実装
// - MockSource: テスト用のインメモリ実装
// - 取得失敗は ErrDeviceUnavailable、読み取り失敗は ErrFrameRead でラップされる
// - 読み取りはタイムアウト付きで実行され、ハングしてもキャンセルを妨げない
//
// # 前提要件
//   - OpenCV 4.x: gocvのビルドと実行に必要
//     https://gocv.io/getting-started/ を参照
//   - videoグループへの参加: デバイスアクセス権限
//     sudo usermod -a -G video $USER
package camera
