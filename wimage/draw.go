package wimage

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the font we use for overlay text.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawCross draws a plus-shaped marker centered on p.
func DrawCross(dc *gg.Context, p image.Point, arm float64, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawLine(float64(p.X)-arm, float64(p.Y), float64(p.X)+arm, float64(p.Y))
	dc.Stroke()
	dc.DrawLine(float64(p.X), float64(p.Y)-arm, float64(p.X), float64(p.Y)+arm)
	dc.Stroke()
}

// DrawCircleEmpty strokes a circle outline centered on p.
func DrawCircleEmpty(dc *gg.Context, p image.Point, radius float64, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawCircle(float64(p.X), float64(p.Y), radius)
	dc.Stroke()
}

// DrawWellResult overlays a pipeline result on the source frame: a circle
// on the target, a cross on the found centroid and the winning score next
// to it.
func DrawWellResult(img *GrayBuffer, res WellResult, target image.Point) image.Image {
	dc := gg.NewContextForImage(img.ToGray())
	DrawCircleEmpty(dc, target, 6, color.NRGBA{0, 255, 0, 255}, 1.5)
	DrawCross(dc, res.Centroid, 5, color.NRGBA{255, 0, 0, 255}, 1.5)
	label := fmt.Sprintf("%.3f", res.Best.Score)
	DrawString(dc, label, res.Centroid.Add(image.Point{8, -8}), color.NRGBA{255, 0, 0, 255}, 12)
	return dc.Image()
}
