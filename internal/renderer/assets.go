package renderer

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// LoadBackgroundImage decodes a PNG or JPEG and scales it to width x height.
func LoadBackgroundImage(filename string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))

	if bounds.Dx() != width || bounds.Dy() != height {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	} else {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return rgba, nil
}

// LoadTitleFace returns the embedded Go Regular face at size points.
func LoadTitleFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// TitleOverlay draws a single line of text centred at the top of a frame.
type TitleOverlay struct {
	face   font.Face
	src    *image.Uniform
	text   string
	margin int
}

// NewTitleOverlay returns nil when text is empty.
func NewTitleOverlay(text string, face font.Face, c color.Color, margin int) *TitleOverlay {
	if text == "" {
		return nil
	}
	return &TitleOverlay{face: face, src: image.NewUniform(c), text: text, margin: margin}
}

// Draw renders the title onto img.
func (o *TitleOverlay) Draw(img *image.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  o.src,
		Face: o.face,
	}

	bounds, _ := d.BoundString(o.text)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := (img.Bounds().Dx() - textWidth) / 2
	y := textHeight + o.margin

	d.Dot = freetype.Pt(x, y)
	d.DrawString(o.text)
}
