// Package replay reads recorded strokes and feeds them through a game.
//
// Two encodings are supported. JSONL is an event stream, one event per line:
//
//	{"type":"begin","center":{"x":400,"y":300}}
//	{"type":"sample","x":550,"y":300}
//	{"type":"end"}
//
// YAML is a single document with a list of strokes:
//
//	strokes:
//	  - center: {x: 400, y: 300}
//	    points:
//	      - {x: 550, y: 300}
//
// Either may be zstd-compressed, marked by a trailing .zst extension.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuircle/internal/game"
	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/session"
)

// ErrUnknownFormat is returned for files whose extension names no known encoding.
var ErrUnknownFormat = errors.New("unknown replay format")

// Format is a replay encoding.
type Format int

// Formats.
const (
	JSONL Format = iota + 1
	YAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSONL:
		return "jsonl"
	case YAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Stroke is one recorded pointer-down to pointer-up sequence. A nil Center
// keeps the center of the previous stroke.
type Stroke struct {
	Center *geom.Point  `json:"center,omitempty" yaml:"center,omitempty"`
	Points []geom.Point `json:"points" yaml:"points"`
}

type document struct {
	Strokes []Stroke `yaml:"strokes"`
}

type event struct {
	Type   string      `json:"type"`
	Center *geom.Point `json:"center,omitempty"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
}

// FormatOf detects the encoding from the file name.
func FormatOf(path string) (Format, bool, error) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".zst")
	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		return JSONL, compressed, nil
	case ".yaml", ".yml":
		return YAML, compressed, nil
	default:
		return 0, false, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads all strokes from path.
func Load(path string) ([]Stroke, error) {
	format, compressed, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of a read-only file.
			_ = cerr
		}
	}()

	var r io.Reader = f
	if compressed {
		decoder, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer decoder.Close()
		r = decoder
	}
	strokes, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return strokes, nil
}

// Decode reads strokes in the given format.
func Decode(r io.Reader, format Format) ([]Stroke, error) {
	switch format {
	case JSONL:
		return DecodeJSONL(r)
	case YAML:
		return DecodeYAML(r)
	default:
		return nil, ErrUnknownFormat
	}
}

// DecodeYAML reads a YAML stroke document.
func DecodeYAML(r io.Reader) ([]Stroke, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	return doc.Strokes, nil
}

// DecodeJSONL reads a JSONL event stream. A stroke left open at the end of
// the stream is closed implicitly.
func DecodeJSONL(r io.Reader) ([]Stroke, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var strokes []Stroke
	var current *Stroke
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		switch ev.Type {
		case "begin":
			if current != nil {
				strokes = append(strokes, *current)
			}
			current = &Stroke{Center: ev.Center, Points: []geom.Point{}}
		case "sample":
			if current == nil {
				return nil, fmt.Errorf("line %d: sample outside a stroke", lineNum)
			}
			current.Points = append(current.Points, geom.Pt(ev.X, ev.Y))
		case "end":
			if current == nil {
				return nil, fmt.Errorf("line %d: end outside a stroke", lineNum)
			}
			strokes = append(strokes, *current)
			current = nil
		default:
			return nil, fmt.Errorf("line %d: unknown event type %q", lineNum, ev.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan replay: %w", err)
	}
	if current != nil {
		strokes = append(strokes, *current)
	}
	return strokes, nil
}

// Player is the part of a game a replay drives.
type Player interface {
	SetCenter(c geom.Point)
	Begin()
	Sample(p geom.Point) session.Feedback
	End(ctx context.Context) (game.Outcome, error)
}

// Run plays strokes through p in order and returns one outcome per stroke.
// It stops at the first error and returns the outcomes gathered so far,
// including the outcome of the stroke whose End reported the error.
func Run(ctx context.Context, p Player, strokes []Stroke) ([]game.Outcome, error) {
	outcomes := make([]game.Outcome, 0, len(strokes))
	for i, s := range strokes {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if s.Center != nil {
			p.SetCenter(*s.Center)
		}
		p.Begin()
		for _, pt := range s.Points {
			p.Sample(pt)
		}
		out, err := p.End(ctx)
		if err != nil {
			if !errors.Is(err, game.ErrNotDrawing) {
				outcomes = append(outcomes, out)
			}
			return outcomes, fmt.Errorf("stroke %d: %w", i+1, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
