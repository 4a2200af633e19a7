// Package emotion 感情検出のコアとなるワーカーと共有キャッシュを担う
//
// # 責務
// - カメラを所有する背景ワーカー（検出ループ）のライフサイクル管理
// - 分類アダプタ呼び出しのペーシングとオフロード
// - 直近ラベルの多数決による平滑化
// - 最新結果を保持する共有キャッシュの発行と鮮度判定
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 検出の開始・停止を冪等に制御したい
// - 複数のコンシューマから最新の感情スナップショットを読みたい
// - 配信ストリーム用に検出ループの最新フレームを再利用したい
//
// # 仕様
// - Detector: Idle → Starting → Running → Stopping → Idle の状態機械
// - 検出セッションはプロセス全体で同時に最大1つ（Start/Stopのミューテックスで保証）
// - カメラ取得の失敗は Start の呼び出し元へ同期的に返される
// - 分類は別ゴルーチンで実行され、遅いアダプタがキャンセル応答性を妨げない
// - 分類アダプタのエラーは1サイクル分のneutralへ降格し、ループは継続する
// - 一時的な読み取り失敗はリトライされ、連続失敗が閾値を超えた場合のみ停止する
// - Thread-safe な操作をサポート
package emotion
