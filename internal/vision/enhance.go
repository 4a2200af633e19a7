package vision

import (
	"math"

	"gocv.io/x/gocv"
)

// 検出用の縮小解像度
const (
	detectWidth  = 320
	detectHeight = 240
)

// gammaTable はガンマ補正用の256要素ルックアップテーブルを作成する
func gammaTable(gamma float64) []byte {
	if gamma <= 0 {
		gamma = 1.0
	}
	inv := 1.0 / gamma

	table := make([]byte, 256)
	for i := 0; i < 256; i++ {
		v := math.Pow(float64(i)/255.0, inv) * 255.0
		if v > 255 {
			v = 255
		}
		table[i] = byte(v)
	}
	return table
}

// enhance は検出精度を上げるために明度とコントラストを補正する
// LAB色空間でLチャンネルをヒストグラム均等化し、バイラテラルフィルタと
// ガンマ補正をかけた新しいMatを返す。呼び出し側がCloseする
func enhance(src gocv.Mat, gamma float64) gocv.Mat {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(src, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	equalized := gocv.NewMat()
	gocv.EqualizeHist(channels[0], &equalized)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge([]gocv.Mat{equalized, channels[1], channels[2]}, &merged)
	equalized.Close()
	for _, ch := range channels {
		ch.Close()
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(merged, &bgr, gocv.ColorLabToBGR)

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(bgr, &smoothed, 5, 75, 75)

	lut, err := gocv.NewMatFromBytes(1, 256, gocv.MatTypeCV8U, gammaTable(gamma))
	if err != nil {
		out := gocv.NewMat()
		smoothed.CopyTo(&out)
		return out
	}
	defer lut.Close()

	out := gocv.NewMat()
	gocv.LUT(smoothed, lut, &out)
	return out
}
