package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// PreviewConfig holds configuration for the video preview
type PreviewConfig struct {
	Width  int // Width in terminal cells
	Height int // Height in terminal cells; each cell shows two pixel rows
}

// DefaultPreviewConfig returns a sensible default preview size
// 64x18 cells is 64x36 pixels, exactly 16:9 with half-block rendering
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Width:  64,
		Height: 18,
	}
}

// DownsampleFrame scales a full-resolution frame down to preview size. The
// bilinear kernel widens with the scale factor, so one-pixel strokes still
// show up as dimmer cells instead of vanishing between samples.
func DownsampleFrame(frame *image.RGBA, config PreviewConfig) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, config.Width, config.Height*2))
	draw.BiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return dst
}

// RenderPreview converts a downsampled frame to a string of ANSI 24-bit
// colour half blocks: the upper pixel is the foreground, the lower the
// background.
func RenderPreview(preview *image.RGBA) string {
	if preview == nil {
		return ""
	}
	b := preview.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	var sb strings.Builder
	border := strings.Repeat("─", b.Dx())

	sb.WriteString("  ┌" + border + "┐\n")
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		sb.WriteString("  │")
		for x := b.Min.X; x < b.Max.X; x++ {
			top := preview.RGBAAt(x, y)
			bottom := color.RGBA{}
			if y+1 < b.Max.Y {
				bottom = preview.RGBAAt(x, y+1)
			}
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		sb.WriteString("\x1b[0m│\n")
	}
	sb.WriteString("  └" + border + "┘\n")

	return sb.String()
}
