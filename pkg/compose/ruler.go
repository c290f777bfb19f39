package compose

import (
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	tickLength  = 4
	majorTick   = 100
	labelOffset = 3
)

// DrawRuler returns a copy of img with a measurement overlay: a crosshair
// through the center, ticks every interval pixels along both axes of the
// crosshair, and coordinate labels every 100 pixels. A non-positive
// interval draws only the crosshair and labels.
func DrawRuler(img image.Image, interval int) *image.NRGBA {
	dc := gg.NewContextForImage(img)
	w, h := float64(dc.Width()), float64(dc.Height())
	cx, cy := float64(dc.Width()/2), float64(dc.Height()/2)

	dc.SetLineWidth(1)
	dc.SetRGBA(1, 0, 1, 0.9)
	dc.DrawLine(cx+0.5, 0, cx+0.5, h)
	dc.DrawLine(0, cy+0.5, w, cy+0.5)
	dc.Stroke()

	if interval > 0 {
		for x := interval; x < dc.Width(); x += interval {
			l := tick(x)
			dc.DrawLine(float64(x)+0.5, cy-l, float64(x)+0.5, cy+l)
		}
		for y := interval; y < dc.Height(); y += interval {
			l := tick(y)
			dc.DrawLine(cx-l, float64(y)+0.5, cx+l, float64(y)+0.5)
		}
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	for x := majorTick; x < dc.Width(); x += majorTick {
		dc.DrawString(strconv.Itoa(x), float64(x)+labelOffset, cy-labelOffset)
	}
	for y := majorTick; y < dc.Height(); y += majorTick {
		dc.DrawString(strconv.Itoa(y), cx+labelOffset, float64(y)-labelOffset)
	}

	return imaging.Clone(dc.Image())
}

func tick(pos int) float64 {
	if pos%majorTick == 0 {
		return 2 * tickLength
	}
	return tickLength
}
