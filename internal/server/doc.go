// Package server は、HTTPサーバーと感情検出のコントロールサーフェスを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// 検出の開始/停止エンドポイント、MJPEGストリーミング配信を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - 検出ループの開始/停止/最新値取得エンドポイント
//   - オーバーレイ付きMJPEGストリーミングの配信
//   - 複数クライアントの同時接続をサポート
//
// 仕様:
//   - ルーティングはgin-gonic/ginを使用
//   - ストリーミングは multipart/x-mixed-replace; boundary=frame
//   - グレースフルシャットダウンに対応（検出セッションも停止する）
//   - 配信ストリームは検出ループの開いているハンドルがあれば再利用し、
//     無ければストリーム専用のハンドルを開いて終了時に必ず解放する
package server
