package emotion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"kanjou/internal/camera"
)

// ErrAlreadyActive は検出が既に起動している場合に返されるエラー
var ErrAlreadyActive = errors.New("感情検出は既に起動しています")

// ErrAlreadyInactive は検出が既に停止している場合に返されるエラー
var ErrAlreadyInactive = errors.New("感情検出は既に停止しています")

// Config は検出ループの動作パラメータ
// ゼロ値のフィールドにはデフォルト値が適用される
type Config struct {
	Interval        time.Duration // フレーム取得の目標周期（デフォルト: 約15サイクル/秒）
	ClassifyEvery   int           // 何サイクルごとに分類を実行するか（デフォルト: 2）
	SmoothingWindow int           // 平滑化バッファの長さ（デフォルト: 5）
	CacheTimeout    time.Duration // キャッシュの鮮度タイムアウト（デフォルト: 10秒）
	MaxReadFailures int           // 連続読み取り失敗の許容回数（デフォルト: 30）
	DefaultGamma    float64       // gamma未指定時の補正値（デフォルト: 1.2）
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = time.Second / 15
	}
	if c.ClassifyEvery < 1 {
		c.ClassifyEvery = 2
	}
	if c.SmoothingWindow < 1 {
		c.SmoothingWindow = 5
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = 10 * time.Second
	}
	if c.MaxReadFailures < 1 {
		c.MaxReadFailures = 30
	}
	if c.DefaultGamma <= 0 {
		c.DefaultGamma = 1.2
	}
	return c
}

// SourceFactory は新しいカメラSourceを作成する関数
type SourceFactory func() camera.Source

// session は1回の検出ループ実行を表す
// Startの成功で作成され、停止または回復不能な失敗でハンドル解放とともに破棄される
type session struct {
	id         string
	source     camera.Source
	gamma      float64
	cancel     context.CancelFunc
	done       chan struct{}
	frameCount int
}

// Detector はカメラを所有し、検出結果をキャッシュへ発行する背景ワーカー
// プロセス全体で同時に存在できる検出セッションは最大1つ
type Detector struct {
	cfg       Config
	newSource SourceFactory
	classify  Classifier
	cache     *Cache
	log       *logrus.Entry

	mu      sync.Mutex
	status  Status
	session *session

	// 配信ストリーム用に直近のフレームを保持する
	frameMu     sync.RWMutex
	latestFrame []byte
}

// NewDetector は新しいDetectorを作成する
func NewDetector(cfg Config, newSource SourceFactory, classify Classifier, log *logrus.Logger) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:       cfg,
		newSource: newSource,
		classify:  classify,
		cache:     NewCache(cfg.CacheTimeout),
		status:    StatusIdle,
		log:       log.WithField("component", "detector"),
	}
}

// Start は検出ループを開始する
// カメラの取得は同期的に行われ、失敗は呼び出し元へそのまま返される
// 既に起動している場合は副作用なしで ErrAlreadyActive を返す
func (d *Detector) Start(gamma float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for d.session != nil {
		if d.status != StatusStopping {
			return ErrAlreadyActive
		}

		// 停止中のセッションの後始末を待つ（1周期以内に完了する）
		// stopとstartの競合でハンドルが漏れたり二重解放されたりしないための待ち合わせ
		done := d.session.done
		d.mu.Unlock()
		<-done
		d.mu.Lock()
	}

	if gamma <= 0 {
		gamma = d.cfg.DefaultGamma
	}

	d.status = StatusStarting
	src := d.newSource()
	if err := src.Open(context.Background()); err != nil {
		d.status = StatusIdle
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.New().String(),
		source: src,
		gamma:  gamma,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	d.session = s
	d.status = StatusRunning
	d.cache.Activate(time.Now())

	d.log.WithFields(logrus.Fields{"session": s.id, "gamma": gamma}).Info("感情検出を開始しました")
	go d.run(ctx, s)
	return nil
}

// Stop は検出ループへ停止を指示する。後始末の完了は待たない
// セッションが無い場合はキャッシュの無効化だけ保証して ErrAlreadyInactive を返す
func (d *Detector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil || d.status == StatusStopping {
		d.cache.Deactivate(time.Now())
		return ErrAlreadyInactive
	}

	d.status = StatusStopping
	d.session.cancel()
	d.log.WithField("session", d.session.id).Info("感情検出の停止を要求しました")
	return nil
}

// Latest は現在のキャッシュのスナップショットを返す
func (d *Detector) Latest() Snapshot {
	return d.cache.Snapshot(time.Now())
}

// GetStatus は現在の状態を返す
func (d *Detector) GetStatus() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// LatestFrame は直近に取得したJPEGフレームのコピーを返す
// 配信ストリームが検出ループの開いているハンドルを再利用するためのもの
func (d *Detector) LatestFrame() ([]byte, bool) {
	d.frameMu.RLock()
	defer d.frameMu.RUnlock()

	if d.latestFrame == nil {
		return nil, false
	}
	frame := make([]byte, len(d.latestFrame))
	copy(frame, d.latestFrame)
	return frame, true
}

// run は検出ループの本体
// ペーシングはtickerが担い、分類コストと独立して目標周期を保つ
func (d *Detector) run(ctx context.Context, s *session) {
	defer d.finish(s)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	smoother := NewSmoother(d.cfg.SmoothingWindow)
	failures := 0

	for {
		// キャンセルは毎周期チェックされ、観測遅延は1周期以内に収まる
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			d.log.WithError(err).WithFields(logrus.Fields{
				"session":  s.id,
				"failures": failures,
			}).Warn("フレームの読み取りに失敗しました")
			if failures >= d.cfg.MaxReadFailures {
				d.log.WithField("session", s.id).Error("読み取り失敗が連続したため検出を停止します")
				return
			}
			// tickerが次周期まで待つため自然なバックオフになる
			continue
		}
		failures = 0

		d.storeLatest(frame)

		// 分類はkサイクルに1回だけ実行し、高コストなアダプタ呼び出しを間引く
		classifyCycle := s.frameCount%d.cfg.ClassifyEvery == 0
		s.frameCount++
		if !classifyCycle {
			continue
		}

		detections, err := d.classifyFrame(ctx, frame, s.gamma)
		var best Detection
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			// アダプタの失敗は1サイクル分のneutralへ降格して続行する
			d.log.WithError(err).WithField("session", s.id).Error("分類アダプタでエラーが発生しました")
			best = Detection{Label: LabelNeutral, Score: 0.0}
		case len(detections) == 0:
			// 検出なしはアダプタの失敗と区別して記録する
			d.log.WithField("session", s.id).Debug("顔が検出されませんでした")
			best = Detection{Label: LabelNeutral, Score: 0.0}
		default:
			best = bestDetection(detections)
		}

		// ラベルは平滑化し、スコアは今サイクルの生の値をそのまま発行する
		published := smoother.Push(best.Label)
		d.cache.Update(published, best.Score, time.Now())
	}
}

// classifyFrame は分類をループ本体とは別のゴルーチンで実行する
// 遅い・ブロックするアダプタ呼び出しがキャンセル応答性を損なわないようにするため
func (d *Detector) classifyFrame(ctx context.Context, frame []byte, gamma float64) ([]Detection, error) {
	type result struct {
		detections []Detection
		err        error
	}

	ch := make(chan result, 1)
	go func() {
		detections, err := d.classify(frame, gamma)
		ch <- result{detections: detections, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.detections, res.err
	}
}

// finish はセッションを後始末してIdleへ戻す
// ハンドル解放・キャッシュ無効化・シグナルのクリアをどの終了経路でも一度だけ行う
func (d *Detector) finish(s *session) {
	if err := s.source.Close(); err != nil {
		d.log.WithError(err).WithField("session", s.id).Warn("カメラの解放に失敗しました")
	}
	s.cancel()

	d.mu.Lock()
	d.cache.Deactivate(time.Now())
	d.clearLatest()
	d.session = nil
	d.status = StatusIdle
	d.mu.Unlock()

	close(s.done)
	d.log.WithField("session", s.id).Info("感情検出を停止しました")
}

func (d *Detector) storeLatest(frame []byte) {
	d.frameMu.Lock()
	d.latestFrame = frame
	d.frameMu.Unlock()
}

func (d *Detector) clearLatest() {
	d.frameMu.Lock()
	d.latestFrame = nil
	d.frameMu.Unlock()
}
