// Package imaging 提供面向 OCR 的页面图片预处理。
package imaging

import (
	"clauselens-go/pkg/log"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// 倾斜角小于该阈值时不做矫正。
const deskewThresholdDegrees = 0.5

// Normalizer 对页面图片做灰度、去噪、二值化、去倾斜和形态学闭运算，
// 以最大化 OCR 识别率。任何内部失败都不会中断流水线：
// Normalize 在失败时原样返回输入图片。
type Normalizer struct{}

// NewNormalizer 创建一个 Normalizer。
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize 返回预处理后的 PNG 图片字节。失败时返回原图并记录告警。
func (n *Normalizer) Normalize(pageImage []byte) []byte {
	out, err := n.normalize(pageImage)
	if err != nil {
		log.Warnf("[Normalizer] 图片预处理失败, 使用原图: %v", err)
		return pageImage
	}
	return out
}

func (n *Normalizer) normalize(pageImage []byte) ([]byte, error) {
	src, err := gocv.IMDecode(pageImage, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.Empty() {
		return nil, errEmptyImage
	}

	// 1. 灰度
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	// 2. 双边滤波去噪（保留边缘）
	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.BilateralFilter(gray, &denoised, 9, 75, 75)

	// 3. 自适应阈值二值化
	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.AdaptiveThreshold(denoised, &thresh, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 11, 2)

	// 4. 去倾斜：由前景点最小外接矩形估计主倾角
	deskewed, rotated := deskew(thresh)
	if rotated {
		defer deskewed.Close()
	}

	// 5. 形态学闭运算，连接笔画间的细小断裂
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer kernel.Close()
	morphed := gocv.NewMat()
	defer morphed.Close()
	gocv.MorphologyEx(deskewed, &morphed, gocv.MorphClose, kernel)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, morphed)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// deskew 估计二值图的倾角并在超过阈值时旋转矫正。
// 第二个返回值指示是否生成了新 Mat：未矫正时返回输入本身，调用方不得 Close。
func deskew(thresh gocv.Mat) (gocv.Mat, bool) {
	points := gocv.NewMat()
	defer points.Close()
	gocv.FindNonZero(thresh, &points)
	if points.Empty() {
		return thresh, false
	}

	pv := gocv.NewPointVectorFromMat(points)
	defer pv.Close()
	rect := gocv.MinAreaRect(pv)

	angle := rect.Angle
	if angle < -45 {
		angle = -(90 + angle)
	} else {
		angle = -angle
	}
	if math.Abs(angle) <= deskewThresholdDegrees {
		return thresh, false
	}

	size := image.Pt(thresh.Cols(), thresh.Rows())
	center := image.Pt(size.X/2, size.Y/2)
	rotation := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer rotation.Close()

	rotated := gocv.NewMat()
	gocv.WarpAffineWithParams(thresh, &rotated, rotation, size,
		gocv.InterpolationCubic, gocv.BorderReplicate, emptyBorderValue())
	return rotated, true
}
