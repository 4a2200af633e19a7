// Package vision Haar cascadeを用いたヒューリスティックな感情分類と描画を担う
//
// # 責務
// - 1フレームからの顔検出と感情ラベルの推定（emotion.Classifierの既定実装）
// - 検出精度を上げるための画像補正（ヒストグラム均等化・ガンマ補正）
// - 配信フレームへのラベル・状態オーバーレイの描画
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - emotion.Classifier の契約を満たす分類実装が必要な場合
// - 配信ストリームへ現在の検出状態を重ねて表示したい場合
//
// # 仕様
// - 顔: frontalface cascade (scaleFactor 1.08, minNeighbors 5, minSize 40x40)
// - 目: eye cascade を顔ROI内で検出 (scaleFactor 1.1, minNeighbors 3, minSize 8x8)
// - 口の開き: ROI下半分のOtsu二値化と輪郭面積のヒューリスティック
// - 目が検出できない -> tired_or_eyes_closed、口が大きく開く -> surprised、それ以外 -> neutral
// - 検出は320x240へ縮小して実行し、ボックスは元フレーム座標へ戻す
// - 平滑化はこのパッケージでは行わない（検出ループ側の責務）
//
// # 前提要件
//   - OpenCVのHaar cascadeファイル (haarcascade_frontalface_default.xml,
//     haarcascade_eye.xml) が設定されたパスに存在すること
package vision
