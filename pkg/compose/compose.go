// Package compose stacks normalized source bitmaps into one artifact.
//
// A composition starts from a clone of the configuration's own bitmap. An
// optional active top-level sub-configuration is drawn on top, followed by
// its loaded descendants in depth-first pre-order. Drawing is plain
// source-over; tree order is the only z-order.
//
// Placement rules, per layer:
//
//   - center: centered within the parent layer's rectangle.
//   - otherwise: (left, top), each falling back to the parent's value, then
//     the root configuration's value, then 0.
//
// Only one top-level sub-configuration is composed per artifact. Callers
// that need several active switches render one artifact each.
package compose

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/settings"
)

// Images maps nodes to their normalized bitmaps. A node missing from the
// map is not drawn, and neither are its descendants.
type Images map[*config.Node]*image.NRGBA

// Options configures a composition.
type Options struct {
	Ruler settings.Ruler
}

// Layer is one overlay placed on the base bitmap.
type Layer struct {
	Node  *config.Node
	Image *image.NRGBA
	At    image.Point
}

// Bounds returns the layer's rectangle in base-image coordinates.
func (l Layer) Bounds() image.Rectangle {
	return image.Rectangle{Min: l.At, Max: l.At.Add(l.Image.Bounds().Size())}
}

// Plan computes the overlays drawn on top of base for sub, in draw order.
// A nil sub, or one without a loaded bitmap, yields no layers.
func Plan(base image.Image, root, sub *config.Node, loaded Images) []Layer {
	if sub == nil {
		return nil
	}
	img, ok := loaded[sub]
	if !ok {
		return nil
	}

	rootRect := base.Bounds().Sub(base.Bounds().Min)
	first := Layer{Node: sub, Image: img, At: place(sub, root, root, rootRect, img)}
	layers := []Layer{first}
	placed := map[*config.Node]image.Rectangle{sub: first.Bounds()}

	sub.Walk(func(n, parent *config.Node) bool {
		img, ok := loaded[n]
		if !ok {
			return false
		}
		l := Layer{Node: n, Image: img, At: place(n, parent, root, placed[parent], img)}
		placed[n] = l.Bounds()
		layers = append(layers, l)
		return true
	})
	return layers
}

// Compose draws the planned layers over a clone of base and applies the
// ruler overlay when enabled. The result always has base's dimensions.
func Compose(base *image.NRGBA, root, sub *config.Node, loaded Images, opts Options) *image.NRGBA {
	out := imaging.Clone(base)
	for _, l := range Plan(base, root, sub, loaded) {
		out = imaging.Overlay(out, l.Image, l.At, 1.0)
	}
	if opts.Ruler.Enabled {
		out = DrawRuler(out, opts.Ruler.Interval)
	}
	return out
}

func place(n, parent, root *config.Node, parentRect image.Rectangle, img *image.NRGBA) image.Point {
	size := img.Bounds().Size()
	if n.IsCentered() {
		return image.Point{
			X: parentRect.Min.X + (parentRect.Dx()-size.X)/2,
			Y: parentRect.Min.Y + (parentRect.Dy()-size.Y)/2,
		}
	}
	return image.Point{
		X: coalesce(n.Left, parent.Left, root.Left),
		Y: coalesce(n.Top, parent.Top, root.Top),
	}
}

func coalesce(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
