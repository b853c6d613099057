package replay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/verte-zerg/tuircle/internal/game"
	"github.com/verte-zerg/tuircle/internal/geom"
	"github.com/verte-zerg/tuircle/internal/model"
	"github.com/verte-zerg/tuircle/internal/policy"
	"github.com/verte-zerg/tuircle/internal/session"
)

func ring(cx, cy, r float64, n int) []geom.Point {
	points := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		// Round to keep text encodings exact.
		x := math.Round((cx+r*math.Cos(a))*1000) / 1000
		y := math.Round((cy+r*math.Sin(a))*1000) / 1000
		points = append(points, geom.Pt(x, y))
	}
	return points
}

func fixture() []Stroke {
	center := geom.Pt(400, 300)
	return []Stroke{
		{Center: &center, Points: ring(400, 300, 150, 36)},
		{Points: ring(400, 300, 150, 36)[:10]},
	}
}

func jsonlText(strokes []Stroke) string {
	var b strings.Builder
	b.WriteString("# recorded strokes\n")
	for _, s := range strokes {
		if s.Center != nil {
			fmt.Fprintf(&b, "{\"type\":\"begin\",\"center\":{\"x\":%v,\"y\":%v}}\n", s.Center.X, s.Center.Y)
		} else {
			b.WriteString("{\"type\":\"begin\"}\n")
		}
		for _, p := range s.Points {
			fmt.Fprintf(&b, "{\"type\":\"sample\",\"x\":%v,\"y\":%v}\n", p.X, p.Y)
		}
		b.WriteString("{\"type\":\"end\"}\n\n")
	}
	return b.String()
}

func yamlText(strokes []Stroke) string {
	var b strings.Builder
	b.WriteString("strokes:\n")
	for _, s := range strokes {
		if s.Center != nil {
			fmt.Fprintf(&b, "  - center: {x: %v, y: %v}\n    points:\n", s.Center.X, s.Center.Y)
		} else {
			b.WriteString("  - points:\n")
		}
		for _, p := range s.Points {
			fmt.Fprintf(&b, "      - {x: %v, y: %v}\n", p.X, p.Y)
		}
	}
	return b.String()
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeZstd(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := enc.Write([]byte(data)); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func TestFormatsDecodeIdentically(t *testing.T) {
	dir := t.TempDir()
	want := fixture()
	files := map[string]func(){
		"a.jsonl":     func() { writeFile(t, filepath.Join(dir, "a.jsonl"), jsonlText(want)) },
		"b.yaml":      func() { writeFile(t, filepath.Join(dir, "b.yaml"), yamlText(want)) },
		"c.jsonl.zst": func() { writeZstd(t, filepath.Join(dir, "c.jsonl.zst"), jsonlText(want)) },
		"d.yml.zst":   func() { writeZstd(t, filepath.Join(dir, "d.yml.zst"), yamlText(want)) },
	}
	for name, write := range files {
		write()
		got, err := Load(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s decoded differently:\n got %+v\nwant %+v", name, got, want)
		}
	}
}

func TestFormatOf(t *testing.T) {
	cases := []struct {
		path       string
		format     Format
		compressed bool
	}{
		{"x.jsonl", JSONL, false},
		{"x.NDJSON", JSONL, false},
		{"dir/x.yaml.zst", YAML, true},
		{"x.yml", YAML, false},
	}
	for _, tc := range cases {
		f, c, err := FormatOf(tc.path)
		if err != nil || f != tc.format || c != tc.compressed {
			t.Fatalf("%s: expected %v/%v, got %v/%v (%v)", tc.path, tc.format, tc.compressed, f, c, err)
		}
	}
	if _, _, err := FormatOf("x.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Load("x.txt.zst"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat from Load, got %v", err)
	}
}

func TestDecodeJSONLErrors(t *testing.T) {
	cases := map[string]string{
		"sample outside": `{"type":"sample","x":1,"y":2}`,
		"end outside":    `{"type":"end"}`,
		"bad type":       `{"type":"move"}`,
		"bad json":       `{"type":`,
	}
	for name, data := range cases {
		if _, err := DecodeJSONL(strings.NewReader(data)); err == nil || !strings.Contains(err.Error(), "line 1") {
			t.Fatalf("%s: expected line error, got %v", name, err)
		}
	}
}

func TestDecodeJSONLClosesOpenStroke(t *testing.T) {
	data := "{\"type\":\"begin\"}\n{\"type\":\"sample\",\"x\":1,\"y\":2}\n{\"type\":\"begin\"}\n{\"type\":\"sample\",\"x\":3,\"y\":4}\n"
	strokes, err := DecodeJSONL(strings.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(strokes) != 2 || strokes[1].Points[0] != geom.Pt(3, 4) {
		t.Fatalf("unexpected strokes %+v", strokes)
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	strokes, err := DecodeYAML(strings.NewReader(""))
	if err != nil || len(strokes) != 0 {
		t.Fatalf("expected no strokes, got %v (%v)", strokes, err)
	}
}

func TestRunMatchesLiveInput(t *testing.T) {
	cfg, err := policy.Preset(policy.Strict)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	strokes := fixture()

	replayed := game.New(session.New(geom.Pt(0, 0), cfg, 1), nil, nil)
	outcomes, err := Run(context.Background(), replayed, strokes)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	live := game.New(session.New(geom.Pt(400, 300), cfg, 1), nil, nil)
	live.Begin()
	for _, p := range strokes[0].Points {
		live.Sample(p)
	}
	want, err := live.End(context.Background())
	if err != nil {
		t.Fatalf("live end: %v", err)
	}
	if outcomes[0].Result.State != want.Result.State || outcomes[0].Result.Score != want.Result.Score {
		t.Fatalf("expected replay to match live input: %+v vs %+v", outcomes[0].Result, want.Result)
	}
	if outcomes[0].Result.State != policy.Completed || !outcomes[0].NewBest {
		t.Fatalf("expected completed new best, got %+v", outcomes[0])
	}
	if outcomes[1].Result.State != policy.FailedIncompleteSweep || outcomes[1].Result.Center != geom.Pt(400, 300) {
		t.Fatalf("expected second stroke to keep center and fail, got %+v", outcomes[1].Result)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg, err := policy.Preset(policy.Lenient)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := game.New(session.New(geom.Pt(0, 0), cfg, 0), nil, nil)
	outcomes, err := Run(ctx, g, fixture())
	if !errors.Is(err, context.Canceled) || len(outcomes) != 0 {
		t.Fatalf("expected cancellation before first stroke, got %d outcomes (%v)", len(outcomes), err)
	}
}

type brokenStore struct{}

func (brokenStore) BestScore(context.Context) (model.Best, error) {
	return model.Best{}, nil
}

func (brokenStore) SetBestScore(context.Context, float64, time.Time) error {
	return errors.New("disk full")
}

func TestRunKeepsOutcomeOnStoreError(t *testing.T) {
	cfg, err := policy.Preset(policy.Strict)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	g := game.New(session.New(geom.Pt(0, 0), cfg, 0), brokenStore{}, nil)
	outcomes, err := Run(context.Background(), g, fixture())
	if err == nil || !strings.Contains(err.Error(), "stroke 1") || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error on the first stroke, got %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("expected the failing stroke's outcome to be kept, got %d", len(outcomes))
	}
	if outcomes[0].Result.State != policy.Completed || outcomes[0].Result.Score == 0 {
		t.Fatalf("expected completed outcome, got %+v", outcomes[0].Result)
	}
}
