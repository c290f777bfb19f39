package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/mfdcache/pkg/config"
	"github.com/matzehuels/mfdcache/pkg/errors"
	"github.com/matzehuels/mfdcache/pkg/observability"
	"github.com/matzehuels/mfdcache/pkg/settings"
)

// Loader resolves and normalizes node bitmaps.
//
// Decoded files are memoized by path, since sibling nodes commonly crop
// different regions of one sheet. A Loader is meant for one render pass
// and is not safe for concurrent use.
type Loader struct {
	source  ImageSource
	variant settings.Variant
	logger  *log.Logger
	decoded map[string]image.Image
}

// NewLoader creates a loader. A nil source reads from disk; a nil logger
// discards output.
func NewLoader(src ImageSource, variant settings.Variant, logger *log.Logger) *Loader {
	if src == nil {
		src = FileSource{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{
		source:  src,
		variant: variant,
		logger:  logger,
		decoded: make(map[string]image.Image),
	}
}

// Resolve returns the path of the first existing candidate file for n
// after placeholder expansion and hardware-variant substitution. When no
// candidate exists it returns SOURCE_IMAGE_NOT_FOUND wrapping an
// [errors.NotFoundError] that lists every attempted path.
func (l *Loader) Resolve(n *config.Node) (string, error) {
	dir := ExpandEnv(n.FilePath)
	name := ExpandEnv(n.FileName)

	var attempted []string
	try := func(candidate string) (string, bool) {
		p := filepath.Join(dir, candidate)
		attempted = append(attempted, p)
		return p, l.source.Exists(p)
	}

	v := l.variant
	if v.Key != "" && strings.Contains(name, v.Key) {
		if p, ok := try(strings.ReplaceAll(name, v.Key, v.Primary)); ok {
			return p, nil
		}
		if v.UseFallback && v.Fallback != "" {
			if p, ok := try(strings.ReplaceAll(name, v.Key, v.Fallback)); ok {
				l.logger.Debug("using fallback variant", "node", n.ReadableName(), "path", p)
				return p, nil
			}
		}
	} else if p, ok := try(name); ok {
		return p, nil
	}

	nf := &errors.NotFoundError{Node: n.ReadableName(), Attempted: attempted}
	return "", errors.Wrap(errors.ErrCodeSourceImageNotFound, nf, "load %s", n.ReadableName())
}

// Load resolves, decodes and normalizes the bitmap for n.
func (l *Loader) Load(ctx context.Context, n *config.Node) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	path, err := l.Resolve(n)
	if err != nil {
		observability.Render().OnSourceLoad(ctx, n.ReadableName(), "", time.Since(start), err)
		return nil, err
	}

	img, ok := l.decoded[path]
	if !ok {
		img, err = l.source.Decode(path)
		if err != nil {
			err = fmt.Errorf("decode %s: %w", path, err)
			observability.Render().OnSourceLoad(ctx, n.ReadableName(), path, time.Since(start), err)
			return nil, err
		}
		l.decoded[path] = img
	}

	out, err := Normalize(img, n)
	observability.Render().OnSourceLoad(ctx, n.ReadableName(), path, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded source", "node", n.ReadableName(), "path", path,
		"size", fmt.Sprintf("%dx%d", out.Bounds().Dx(), out.Bounds().Dy()))
	return out, nil
}

// CropRect returns the crop rectangle for n within bounds. An empty offset
// rectangle selects the whole image.
func CropRect(n *config.Node, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(n.XOffsetStart, n.YOffsetStart, n.XOffsetFinish, n.YOffsetFinish)
	if n.XOffsetFinish <= n.XOffsetStart || n.YOffsetFinish <= n.YOffsetStart {
		return bounds
	}
	return r.Add(bounds.Min).Intersect(bounds)
}

// Normalize crops, stretches and flattens img according to n.
func Normalize(img image.Image, n *config.Node) (*image.NRGBA, error) {
	rect := CropRect(n, img.Bounds())
	if rect.Empty() {
		return nil, errors.New(errors.ErrCodeMalformedConfig,
			"%s: crop (%d,%d)-(%d,%d) lies outside the %dx%d source",
			n.ReadableName(), n.XOffsetStart, n.YOffsetStart, n.XOffsetFinish, n.YOffsetFinish,
			img.Bounds().Dx(), img.Bounds().Dy())
	}
	out := imaging.Crop(img, rect)

	w, h := rect.Dx(), rect.Dy()
	if n.Width != nil && *n.Width > 0 {
		w = *n.Width
	}
	if n.Height != nil && *n.Height > 0 {
		h = *n.Height
	}
	if w != rect.Dx() || h != rect.Dy() {
		out = imaging.Resize(out, w, h, imaging.Linear)
	}

	flatten(out, n.OpacityValue())
	return out, nil
}

// flatten discards source alpha and applies opacity uniformly.
func flatten(img *image.NRGBA, opacity float64) {
	a := uint8(math.Round(255 * opacity))
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 3; i < len(row); i += 4 {
			row[i] = a
		}
	}
}

var percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandEnv expands %VAR%, $VAR and ${VAR} placeholders. Undefined
// variables are left in place so the failing path stays recognizable.
func ExpandEnv(s string) string {
	s = percentVar.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return v
		}
		return m
	})
	return os.Expand(s, func(k string) string {
		if v, ok := os.LookupEnv(k); ok {
			return v
		}
		return "${" + k + "}"
	})
}
