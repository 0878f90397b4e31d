package imaging

import (
	"errors"
	"image/color"
)

var errEmptyImage = errors.New("解码后的图片为空")

// emptyBorderValue 仅为满足 WarpAffineWithParams 的参数签名；
// BorderReplicate 模式下该值不参与计算。
func emptyBorderValue() color.RGBA {
	return color.RGBA{}
}
