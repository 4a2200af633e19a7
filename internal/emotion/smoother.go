package emotion

// Smoother は直近の生ラベルを保持し、多数決で公開ラベルを平滑化する
// ラベルのちらつきを抑えるためのもので、スコアは平滑化しない
// 検出ループのみが所有・更新し、外部へは公開されない
type Smoother struct {
	window int
	labels []string
}

// NewSmoother は新しいSmootherを作成する
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = 1
	}
	return &Smoother{
		window: window,
		labels: make([]string, 0, window),
	}
}

// Push は今サイクルの勝者ラベルを追加し、公開すべきラベルを返す
// バッファが3件に満たない間は生ラベルをそのまま返し、
// 3件以上になるとバッファの最頻値を返す（同数なら直近に観測された方）
func (s *Smoother) Push(label string) string {
	s.labels = append(s.labels, label)
	if len(s.labels) > s.window {
		s.labels = s.labels[1:]
	}

	if len(s.labels) < 3 {
		return label
	}
	return s.mode()
}

// mode はバッファの最頻値を返す
func (s *Smoother) mode() string {
	counts := make(map[string]int, len(s.labels))
	lastSeen := make(map[string]int, len(s.labels))
	for i, l := range s.labels {
		counts[l]++
		lastSeen[l] = i
	}

	best := s.labels[0]
	for _, l := range s.labels {
		if counts[l] > counts[best] {
			best = l
			continue
		}
		if counts[l] == counts[best] && lastSeen[l] > lastSeen[best] {
			best = l
		}
	}
	return best
}

// Reset は内部バッファをクリアする
func (s *Smoother) Reset() {
	s.labels = s.labels[:0]
}
