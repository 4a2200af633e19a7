package vision

import (
	"fmt"
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"kanjou/internal/emotion"
)

// 口の開き具合がこの値を超えると驚きとみなす
const mouthOpenThreshold = 0.03

// Classifier はHaar cascadeを用いたヒューリスティックな感情分類器
// Detect は emotion.Classifier の契約を満たす
type Classifier struct {
	mu   sync.Mutex // cascadeの検出呼び出しは並行実行に安全ではない
	face gocv.CascadeClassifier
	eyes gocv.CascadeClassifier
}

// NewClassifier はcascadeファイルを読み込んで分類器を作成する
func NewClassifier(facePath, eyesPath string) (*Classifier, error) {
	face := gocv.NewCascadeClassifier()
	if !face.Load(facePath) {
		_ = face.Close()
		return nil, fmt.Errorf("顔カスケードの読み込みに失敗: %s", facePath)
	}

	eyes := gocv.NewCascadeClassifier()
	if !eyes.Load(eyesPath) {
		_ = face.Close()
		_ = eyes.Close()
		return nil, fmt.Errorf("目カスケードの読み込みに失敗: %s", eyesPath)
	}

	return &Classifier{face: face, eyes: eyes}, nil
}

// Close はカスケードを解放する
func (c *Classifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.face.Close()
	_ = c.eyes.Close()
}

// Detect は1フレームを感情候補に分類する
func (c *Classifier) Detect(frame []byte, gamma float64) ([]emotion.Detection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 失敗時もMatが割り当てられることがあるため、先にCloseを仕込む
	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	defer img.Close()
	if err != nil {
		return nil, fmt.Errorf("フレームのデコードに失敗: %w", err)
	}
	if img.Empty() {
		return nil, fmt.Errorf("空のフレームを受け取りました")
	}

	origW := img.Cols()
	origH := img.Rows()

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(img, &small, image.Pt(detectWidth, detectHeight), 0, 0, gocv.InterpolationLinear)

	enhanced := enhance(small, gamma)
	defer enhanced.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(enhanced, &gray, gocv.ColorBGRToGray)

	rects := c.face.DetectMultiScaleWithParams(
		gray, 1.08, 5, 0, image.Pt(40, 40), image.Pt(0, 0))

	detections := make([]emotion.Detection, 0, len(rects))
	for _, r := range rects {
		roi := gray.Region(r)
		label, score := c.classifyFace(roi)
		roi.Close()

		// ボックスを元のフレームサイズへ戻す
		detections = append(detections, emotion.Detection{
			Box: emotion.Box{
				X: r.Min.X * origW / detectWidth,
				Y: r.Min.Y * origH / detectHeight,
				W: r.Dx() * origW / detectWidth,
				H: r.Dy() * origH / detectHeight,
			},
			Label: label,
			Score: score,
		})
	}

	return detections, nil
}

// classifyFace は顔ROIから感情ラベルとスコアを推定する
// 目が見えない -> 疲労/閉眼、口が大きく開いている -> 驚き、それ以外 -> neutral
func (c *Classifier) classifyFace(roi gocv.Mat) (string, float64) {
	eyes := c.eyes.DetectMultiScaleWithParams(
		roi, 1.1, 3, 0, image.Pt(8, 8), image.Pt(0, 0))

	if len(eyes) == 0 {
		return emotion.LabelTired, 0.6
	}

	if mouth := mouthScore(roi); mouth > mouthOpenThreshold {
		score := math.Min(0.9, 0.5+mouth)
		return emotion.LabelSurprised, math.Round(score*100) / 100
	}

	if len(eyes) >= 2 {
		return emotion.LabelNeutral, 0.7
	}
	return emotion.LabelNeutral, 0.6
}

// mouthScore はROI下半分の輪郭面積から口の開き具合を推定する
func mouthScore(roi gocv.Mat) float64 {
	h := roi.Rows()
	w := roi.Cols()
	if h < 2 || w < 1 {
		return 0.0
	}

	lower := roi.Region(image.Rect(0, h/2, w, h))
	defer lower.Close()

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(lower, &thresh, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var maxArea float64
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > maxArea {
			maxArea = area
		}
	}

	return maxArea / (float64(w*h) + 1e-6)
}
