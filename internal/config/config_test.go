package config

import (
	"testing"
	"time"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg == nil {
		t.Fatal("設定がnilです")
	}

	// サーバー設定の検証
	if cfg.Server.Host == "" {
		t.Error("サーバーホストが設定されていません")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		t.Errorf("無効なポート番号: %d", cfg.Server.Port)
	}

	// 検出ループのデフォルト値の検証
	if cfg.Emotion.DetectFPS != 15 {
		t.Errorf("検出FPSのデフォルトが一致しません: got %d, want 15", cfg.Emotion.DetectFPS)
	}
	if cfg.Emotion.FeedFPS != 30 {
		t.Errorf("配信FPSのデフォルトが一致しません: got %d, want 30", cfg.Emotion.FeedFPS)
	}
	if cfg.Emotion.ClassifyEvery != 2 {
		t.Errorf("分類間引きのデフォルトが一致しません: got %d, want 2", cfg.Emotion.ClassifyEvery)
	}
	if cfg.Emotion.SmoothingWindow != 5 {
		t.Errorf("平滑化ウィンドウのデフォルトが一致しません: got %d, want 5", cfg.Emotion.SmoothingWindow)
	}
	if cfg.Emotion.CacheTimeout != 10*time.Second {
		t.Errorf("キャッシュタイムアウトのデフォルトが一致しません: got %s, want 10s", cfg.Emotion.CacheTimeout)
	}
	if cfg.Emotion.DefaultGamma != 1.2 {
		t.Errorf("デフォルトgammaが一致しません: got %g, want 1.2", cfg.Emotion.DefaultGamma)
	}

	// カメラ設定の検証
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		t.Error("カメラ解像度が設定されていません")
	}
	if cfg.Camera.ReadTimeout <= 0 {
		t.Error("読み取りタイムアウトが設定されていません")
	}

	// カスケードパスの検証
	if cfg.Vision.FaceCascadePath == "" || cfg.Vision.EyeCascadePath == "" {
		t.Error("カスケードファイルのパスが設定されていません")
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: 10 * time.Second},
			Camera: CameraConfig{DeviceID: 0, Width: 640, Height: 480, ReadTimeout: 2 * time.Second},
			Emotion: EmotionConfig{
				DetectFPS:       15,
				FeedFPS:         30,
				ClassifyEvery:   2,
				SmoothingWindow: 5,
				CacheTimeout:    10 * time.Second,
				MaxReadFailures: 30,
				DefaultGamma:    1.2,
			},
			Vision: VisionConfig{
				FaceCascadePath: "OpenCV/haarcascade_frontalface_default.xml",
				EyeCascadePath:  "OpenCV/haarcascade_eye.xml",
			},
		}
	}

	testCases := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			mutate:    func(*Config) {},
			expectErr: false,
		},
		{
			name:      "無効なポート番号",
			mutate:    func(c *Config) { c.Server.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "ポート番号なし",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			expectErr: true,
		},
		{
			name:      "検出FPSがゼロ",
			mutate:    func(c *Config) { c.Emotion.DetectFPS = 0 },
			expectErr: true,
		},
		{
			name:      "負のgamma",
			mutate:    func(c *Config) { c.Emotion.DefaultGamma = -1 },
			expectErr: true,
		},
		{
			name:      "キャッシュタイムアウトなし",
			mutate:    func(c *Config) { c.Emotion.CacheTimeout = 0 },
			expectErr: true,
		},
		{
			name:      "顔カスケードパスなし",
			mutate:    func(c *Config) { c.Vision.FaceCascadePath = "" },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
	}

	expected := "192.168.1.100:9090"
	if actual := cfg.ServerAddress(); actual != expected {
		t.Errorf("サーバーアドレスが一致しません: got %s, want %s", actual, expected)
	}
}

// TestIntervals は周期計算をテストする
func TestIntervals(t *testing.T) {
	cfg := EmotionConfig{DetectFPS: 15, FeedFPS: 30}

	if got := cfg.DetectInterval(); got != time.Second/15 {
		t.Errorf("検出周期が一致しません: got %s", got)
	}
	if got := cfg.FeedInterval(); got != time.Second/30 {
		t.Errorf("配信周期が一致しません: got %s", got)
	}
}

// TestEnvironmentVariables は環境変数の処理をテストする
func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("SERVER_HOST", "test.example.com")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DETECT_FPS", "5")
	t.Setenv("CACHE_TIMEOUT", "3s")
	t.Setenv("DEFAULT_GAMMA", "1.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Host != "test.example.com" {
		t.Errorf("環境変数のホストが反映されていません: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("環境変数のポートが反映されていません: got %d", cfg.Server.Port)
	}
	if cfg.Emotion.DetectFPS != 5 {
		t.Errorf("環境変数の検出FPSが反映されていません: got %d", cfg.Emotion.DetectFPS)
	}
	if cfg.Emotion.CacheTimeout != 3*time.Second {
		t.Errorf("環境変数のキャッシュタイムアウトが反映されていません: got %s", cfg.Emotion.CacheTimeout)
	}
	if cfg.Emotion.DefaultGamma != 1.5 {
		t.Errorf("環境変数のgammaが反映されていません: got %g", cfg.Emotion.DefaultGamma)
	}
}
