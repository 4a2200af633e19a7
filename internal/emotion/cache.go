package emotion

import (
	"sync"
	"time"
)

// Cache は最新の検出結果を保持する共有レコード
// 書き込みは検出ループのみが行い、読み取りは複数のコンシューマから行われる
// 読み取りが2つの更新サイクルの混ざった値を観測することはない
type Cache struct {
	mu        sync.RWMutex
	label     string
	score     float64
	timestamp time.Time
	active    bool
	timeout   time.Duration
}

// NewCache は新しいCacheを作成する
// timeoutを超えて更新されないレコードは読み取り時に陳腐化したとみなされる
func NewCache(timeout time.Duration) *Cache {
	return &Cache{
		label:   LabelNeutral,
		timeout: timeout,
	}
}

// Activate はキャッシュを有効状態にしてタイムスタンプを更新する
func (c *Cache) Activate(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = true
	c.timestamp = now
}

// Update は1サイクル分の結果を原子的に書き込む
// activeな間、タイムスタンプは単調非減少となる
func (c *Cache) Update(label string, score float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.label = label
	c.score = score
	c.timestamp = now
	c.active = true
}

// Deactivate はキャッシュを無効状態にする
func (c *Cache) Deactivate(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.label = LabelNeutral
	c.score = 0.0
	c.timestamp = now
	c.active = false
}

// Snapshot は読み取り時点で鮮度を判定したスナップショットを返す
// 無効または陳腐化したレコードは保存値に関わらずneutral/0.0を返す
func (c *Cache) Snapshot(now time.Time) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stale := now.Sub(c.timestamp) > c.timeout
	if !c.active || stale {
		return Snapshot{
			Label:  LabelNeutral,
			Score:  0.0,
			Active: c.active,
			Stale:  stale,
		}
	}

	return Snapshot{
		Label:  c.label,
		Score:  c.score,
		Active: true,
		Stale:  false,
	}
}
