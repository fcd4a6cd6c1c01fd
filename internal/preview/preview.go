// Package preview 把图片渲染成终端里的半块字符画
//
// 每个字符格显示上下两个像素：前景色是上半格，背景色是下半格。
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const upperHalfBlock = "▀"

// MaxWidth 限制预览的最大列数
const MaxWidth = 160

// Decode 解析 PNG/JPEG/GIF/BMP 图片
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法解析图片: %w", err)
	}
	return img, nil
}

// Render 把图片数据渲染为最多 width 列的字符画
func Render(data []byte, width int) (string, error) {
	img, err := Decode(data)
	if err != nil {
		return "", err
	}
	return RenderImage(img, width), nil
}

// RenderImage 按宽度等比缩放后逐格着色，不放大原图
func RenderImage(img image.Image, width int) string {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 || width <= 0 {
		return ""
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	if width > srcW {
		width = srcW
	}

	height := srcH * width / srcW
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(dst.At(x, y)))
			if y+1 < height {
				style = style.Background(hexColor(dst.At(x, y+1)))
			}
			sb.WriteString(style.Render(upperHalfBlock))
		}
		if y+2 < height {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
