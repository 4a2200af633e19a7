package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig
	Camera  CameraConfig
	Emotion EmotionConfig
	Vision  VisionConfig
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `validate:"required"`        // リッスンするホスト
	Port int    `validate:"min=1,max=65535"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `validate:"min=0"` // 読み込みタイムアウト
	WriteTimeout time.Duration `validate:"min=0"` // 書き込みタイムアウト（ストリーミング用に0=無効を許容）
}

// CameraConfig はカメラデバイスの設定
type CameraConfig struct {
	DeviceID    int           `validate:"min=0"` // デバイスインデックス（例: 0 = /dev/video0）
	Width       int           `validate:"min=1"` // 画像幅
	Height      int           `validate:"min=1"` // 画像高さ
	ReadTimeout time.Duration `validate:"gt=0"`  // 1フレーム読み取りのタイムアウト
}

// EmotionConfig は検出ループの動作パラメータ
// いずれも経験的な定数であり、環境変数で調整できる
type EmotionConfig struct {
	DetectFPS       int           `validate:"min=1,max=60"` // 検出ループの目標サイクル数/秒
	FeedFPS         int           `validate:"min=1,max=60"` // 配信ストリームの目標フレーム数/秒
	ClassifyEvery   int           `validate:"min=1"`        // 何サイクルごとに分類を実行するか
	SmoothingWindow int           `validate:"min=1"`        // 平滑化バッファの長さ
	CacheTimeout    time.Duration `validate:"gt=0"`         // キャッシュの鮮度タイムアウト
	MaxReadFailures int           `validate:"min=1"`        // 連続読み取り失敗の許容回数
	DefaultGamma    float64       `validate:"gt=0,lte=5"`   // gamma未指定時の補正値
}

// VisionConfig は分類器のカスケードファイル設定
type VisionConfig struct {
	FaceCascadePath string `validate:"required"` // 顔カスケードのパス
	EyeCascadePath  string `validate:"required"` // 目カスケードのパス
}

// Load は設定を読み込む
// .envファイルがあれば自動で読み込み、環境変数がデフォルト値を上書きする
func Load() (*Config, error) {
	// .env は無くてもエラーにしない
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsIntOrDefault("SERVER_PORT", 8080),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // ストリーミング用にタイムアウト無効化
		},
		Camera: CameraConfig{
			DeviceID:    getEnvAsIntOrDefault("CAMERA_DEVICE", 0),
			Width:       getEnvAsIntOrDefault("CAMERA_WIDTH", 640),
			Height:      getEnvAsIntOrDefault("CAMERA_HEIGHT", 480),
			ReadTimeout: getEnvAsDurationOrDefault("CAMERA_READ_TIMEOUT", 2*time.Second),
		},
		Emotion: EmotionConfig{
			DetectFPS:       getEnvAsIntOrDefault("DETECT_FPS", 15),
			FeedFPS:         getEnvAsIntOrDefault("FEED_FPS", 30),
			ClassifyEvery:   getEnvAsIntOrDefault("CLASSIFY_EVERY", 2),
			SmoothingWindow: getEnvAsIntOrDefault("SMOOTHING_WINDOW", 5),
			CacheTimeout:    getEnvAsDurationOrDefault("CACHE_TIMEOUT", 10*time.Second),
			MaxReadFailures: getEnvAsIntOrDefault("MAX_READ_FAILURES", 30),
			DefaultGamma:    getEnvAsFloatOrDefault("DEFAULT_GAMMA", 1.2),
		},
		Vision: VisionConfig{
			FaceCascadePath: getEnvOrDefault("FACE_CASCADE_PATH", "OpenCV/haarcascade_frontalface_default.xml"),
			EyeCascadePath:  getEnvOrDefault("EYE_CASCADE_PATH", "OpenCV/haarcascade_eye.xml"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DetectInterval は検出ループの周期を返す
func (c *EmotionConfig) DetectInterval() time.Duration {
	return time.Second / time.Duration(c.DetectFPS)
}

// FeedInterval は配信ストリームの周期を返す
func (c *EmotionConfig) FeedInterval() time.Duration {
	return time.Second / time.Duration(c.FeedFPS)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault は環境変数を実数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatVal float64
		if _, err := fmt.Sscanf(value, "%g", &floatVal); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault は環境変数をDurationとして取得し、設定されていない場合はデフォルト値を返す
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
