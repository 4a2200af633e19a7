package vision

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"

	"kanjou/internal/emotion"
)

// 状態表示の色
var (
	colorActive   = color.RGBA{G: 255, A: 255}         // 緑
	colorInactive = color.RGBA{R: 255, A: 255}         // 赤
	colorStale    = color.RGBA{R: 255, G: 165, A: 255} // オレンジ
	colorText     = color.RGBA{A: 255}                 // 黒
)

// Annotator はキャッシュのスナップショットを配信フレームへ描画する
type Annotator struct{}

// Annotate はラベル・スコア・状態の表示を重ねたJPEGフレームを返す
// デコードやエンコードに失敗した場合は元のフレームをそのまま返す
func (a Annotator) Annotate(frame []byte, snap emotion.Snapshot) []byte {
	// 失敗時もMatが割り当てられることがあるため、先にCloseを仕込む
	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	defer img.Close()
	if err != nil || img.Empty() {
		return frame
	}

	statusText, statusColor := statusStyle(snap)
	gocv.PutText(&img, "Status: "+statusText, image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.7, statusColor, 2)

	if snap.Active && !snap.Stale && snap.Score > 0 {
		label := fmt.Sprintf("%s (%.2f)", strings.ToUpper(snap.Label), snap.Score)
		size := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.6, 2)

		x := 10
		y := img.Rows() - 40
		gocv.Rectangle(&img, image.Rect(x, y, x+size.X+10, y+size.Y+10), statusColor, -1)
		gocv.PutText(&img, label, image.Pt(x+5, y+size.Y+5),
			gocv.FontHersheySimplex, 0.6, colorText, 2)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return frame
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out
}

// statusStyle は状態表示のテキストと色を返す
func statusStyle(snap emotion.Snapshot) (string, color.RGBA) {
	switch {
	case snap.Active && !snap.Stale:
		return "ACTIVE", colorActive
	case !snap.Active:
		return "INACTIVE", colorInactive
	default:
		return "STALE", colorStale
	}
}
