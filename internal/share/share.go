// Package share renders completed strokes into a summary line and a PNG card.
package share

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/score"
	"github.com/verte-zerg/tuircle/internal/session"
	"github.com/verte-zerg/tuircle/internal/smooth"
)

const (
	cardWidth  = 600
	cardHeight = 700
	drawArea   = 600
	margin     = 50
	lineWidth  = 8
	dotRadius  = 6
)

var (
	background = gg.RGBA{R: 0.07, G: 0.07, B: 0.09, A: 1}
	foreground = gg.RGBA{R: 0.92, G: 0.92, B: 0.92, A: 1}
)

// Summary returns the text shared along with the card.
func Summary(s float64, precision int) string {
	return fmt.Sprintf("I scored %s drawing a perfect circle! Can you beat it?", score.Format(s, precision))
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func face(size float64) (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to load card font: %w", fontErr)
	}
	return fontSource.Face(size), nil
}

// Fit maps the stroke into the square drawing area of the card, keeping the
// center in the middle. Strokes larger than the area are scaled down.
func Fit(points []geom.Point, center geom.Point) []geom.Point {
	half := float64(drawArea)/2 - margin
	extent := 0.0
	for _, p := range points {
		extent = math.Max(extent, math.Max(math.Abs(p.X-center.X), math.Abs(p.Y-center.Y)))
	}
	scale := 1.0
	if extent > half {
		scale = half / extent
	}
	mid := float64(drawArea) / 2
	out := make([]geom.Point, len(points))
	for i, p := range points {
		out[i] = geom.Pt(mid+(p.X-center.X)*scale, mid+(p.Y-center.Y)*scale)
	}
	return out
}

// Render draws the card for a completed result.
func Render(res session.Result, precision int) (*gg.Context, error) {
	dc := gg.NewContext(cardWidth, cardHeight)
	dc.ClearWithColor(background)

	mid := float64(drawArea) / 2
	color := score.ColorFor(res.Score)
	curve := smooth.Smooth(Fit(res.Points, res.Center))
	if !curve.Empty() {
		dc.SetLineWidth(lineWidth)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		dc.SetColor(color.Color())
		curve.Trace(dc)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("failed to stroke curve: %w", err)
		}
	}

	dc.SetColor(foreground.Color())
	dc.DrawCircle(mid, mid, dotRadius)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("failed to draw center: %w", err)
	}

	big, err := face(56)
	if err != nil {
		return nil, err
	}
	dc.SetFont(big)
	dc.SetColor(color.Color())
	dc.DrawStringAnchored(score.Format(res.Score, precision), mid, float64(drawArea)+20, 0.5, 0.5)

	small, err := face(18)
	if err != nil {
		return nil, err
	}
	dc.SetFont(small)
	dc.SetColor(foreground.Color())
	dc.DrawStringAnchored("Can you beat it?", mid, float64(drawArea)+70, 0.5, 0.5)
	return dc, nil
}

// WritePNG renders the card and encodes it as PNG.
func WritePNG(w io.Writer, res session.Result, precision int) error {
	dc, err := Render(res, precision)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dc.Close(); cerr != nil {
			// Best-effort context close.
			_ = cerr
		}
	}()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}
	return nil
}

// SaveCard writes the card to path.
func SaveCard(path string, res session.Result, precision int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create card dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	if err := WritePNG(f, res, precision); err != nil {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after encode failure.
			_ = cerr
		}
		return err
	}
	return f.Close()
}

// Dir shares results by writing a PNG card and its summary text into a
// directory.
type Dir struct {
	Path      string
	Precision int
	Now       func() time.Time
}

// Share writes the card and summary and returns the card path.
func (d Dir) Share(ctx context.Context, res session.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if d.Path == "" {
		return "", fmt.Errorf("share directory is empty")
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	base := filepath.Join(d.Path, "tuircle-"+now().Format("20060102-150405"))
	card := base + ".png"
	if err := SaveCard(card, res, d.Precision); err != nil {
		return "", err
	}
	if err := os.WriteFile(base+".txt", []byte(Summary(res.Score, d.Precision)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return card, nil
}
