// Package logger はアプリケーション共通のロガーを提供する
package logger

import (
	"io"
	"os"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// New はアプリケーション共通のロガーを作成する
// 標準エラー出力に加え、テスト実行時以外はローテーション付きのログファイルへも書き込む
func New() *logrus.Logger {
	once.Do(func() {
		log = logrus.New()

		log.SetLevel(logrus.InfoLevel)
		if os.Getenv("LOG_LEVEL") == "debug" {
			log.SetLevel(logrus.DebugLevel)
		}

		log.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "2006-01-02 15:04:05",
			HideKeys:        false,
		})

		writers := []io.Writer{os.Stderr}

		if os.Getenv("APP_ENV") != "test" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   "logs/kanjou.log",
				LocalTime:  true,
				Compress:   true,
				MaxSize:    50, // MB
				MaxAge:     7,  // 日
				MaxBackups: 3,
			})
		}

		log.SetOutput(io.MultiWriter(writers...))
	})

	return log
}
