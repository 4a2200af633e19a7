package emotion

// 感情ラベルの固定セット
const (
	LabelNeutral   = "neutral"
	LabelSurprised = "surprised"
	LabelTired     = "tired_or_eyes_closed"
)

// Status は検出ループの動作状態を表す
type Status string

const (
	StatusIdle     Status = "idle"     // セッションなし
	StatusStarting Status = "starting" // カメラ取得中
	StatusRunning  Status = "running"  // 検出ループ動作中
	StatusStopping Status = "stopping" // 停止要求済み、後始末中
)

// Box は検出された顔のバウンディングボックス（元フレーム座標系）
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Detection は1回の分類サイクルで得られた候補
type Detection struct {
	Box   Box
	Label string
	Score float64 // 信頼度 [0,1]
}

// Classifier は1フレームを感情候補に分類する外部アダプタの契約
// frameはJPEGエンコード済み。5〜15Hzで繰り返し呼び出されても安全であること
type Classifier func(frame []byte, gamma float64) ([]Detection, error)

// Snapshot はキャッシュの自己一貫した読み取り結果
// 無効または陳腐化したレコードはneutral/0.0に差し替えられている
type Snapshot struct {
	Label  string
	Score  float64
	Active bool
	Stale  bool
}

// bestDetection はスコア最大の候補を返す（同点は先に見た方を優先）
// 候補が無い場合はneutral/0.0
func bestDetection(detections []Detection) Detection {
	if len(detections) == 0 {
		return Detection{Label: LabelNeutral, Score: 0.0}
	}

	best := detections[0]
	for _, d := range detections[1:] {
		if d.Score > best.Score {
			best = d
		}
	}
	return best
}
