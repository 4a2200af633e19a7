package server

import "time"

// ControlRequest は検出の開始/停止リクエスト
// gammaが0の場合は設定のデフォルト値が使われる
type ControlRequest struct {
	Active bool    `form:"active"`
	Gamma  float64 `form:"gamma" binding:"omitempty,gt=0,lte=5"`
}

// FeedRequest は配信ストリームのリクエストパラメータ
type FeedRequest struct {
	Gamma float64 `form:"gamma" binding:"omitempty,gt=0,lte=5"`
}

// ControlResponse は開始/停止リクエストの結果
type ControlResponse struct {
	Message string `json:"message"`
}

// LatestResponse は最新の感情スナップショット
type LatestResponse struct {
	DominantEmotion string  `json:"dominant_emotion"`
	Score           float64 `json:"score"`
	Active          bool    `json:"active"`
	Stale           bool    `json:"stale"`
}

// HealthResponse はヘルスチェックの結果
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse はシステム状態の確認結果
type StatusResponse struct {
	Status    string     `json:"status"`
	Server    ServerInfo `json:"server"`
	Detector  string     `json:"detector"`
	Timestamp time.Time  `json:"timestamp"`
}

// ServerInfo はサーバーのリッスン情報
type ServerInfo struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ErrorResponse はエラー応答
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
