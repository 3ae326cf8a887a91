package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/terrain/pkg/cache"
	"github.com/matzehuels/terrain/pkg/errors"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/observability"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	var logs bytes.Buffer
	r := NewRunner(c, nil, log.New(&logs))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatalf("NewRunner should fill nil dependencies: %+v", r)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := newTestRunner(t)
	opts := DefaultOptions()
	opts.Iterations = 3
	opts.Formats = []string{FormatPNG, FormatJSON}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Width != 33 || res.Stats.Height != 33 {
		t.Errorf("size = %dx%d, want 33x33", res.Stats.Width, res.Stats.Height)
	}
	if res.CacheInfo.GenerateHit || res.CacheInfo.ExportHit {
		t.Error("first run should miss the cache")
	}
	if res.GridHash == "" {
		t.Error("GridHash should be set")
	}
	if _, err := png.Decode(bytes.NewReader(res.Artifacts[FormatPNG])); err != nil {
		t.Errorf("png artifact does not decode: %v", err)
	}
	g, err := terrainio.UnmarshalGrid(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if !g.Equal(res.Grid) {
		t.Error("json artifact should match the generated grid")
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.GenerateHit || !again.CacheInfo.ExportHit {
		t.Errorf("second run should hit the cache: %+v", again.CacheInfo)
	}
	if !again.Grid.Equal(res.Grid) {
		t.Error("cached grid differs from generated grid")
	}
	if !bytes.Equal(again.Artifacts[FormatPNG], res.Artifacts[FormatPNG]) {
		t.Error("cached png differs")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	r := newTestRunner(t)
	opts := DefaultOptions()

	if _, _, err := r.GenerateWithCacheInfo(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	_, hit, err := r.GenerateWithCacheInfo(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerGenerateMatchesDirect(t *testing.T) {
	r := newTestRunner(t)
	for _, algo := range []string{AlgorithmDiamondSquare, AlgorithmMidpoint} {
		t.Run(algo, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Algorithm = algo
			opts.Seed = 1234

			got, err := r.Generate(context.Background(), opts)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			want, err := Generate(opts, nil)
			if err != nil {
				t.Fatalf("direct Generate: %v", err)
			}
			if !got.Equal(want) {
				t.Error("runner and direct generation differ")
			}
		})
	}
}

func TestRunnerMidpointShape(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := DefaultOptions()
	opts.Algorithm = "md"
	opts.BaseWidth = 3
	opts.Iterations = 4

	g, err := r.Generate(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := g.Size(); w != 49 || h != 1 {
		t.Errorf("size = %dx%d, want 49x1", w, h)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := DefaultOptions()
	opts.Roughness = 0.5

	_, err := r.Execute(context.Background(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Generate(ctx, DefaultOptions()); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunnerEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)

	r := newTestRunner(t)
	opts := DefaultOptions()
	opts.Iterations = 3
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("generate start/complete = %d/%d, want 1/1", hooks.starts, hooks.completes)
	}
	if want := []int{8, 4, 2}; !slices.Equal(hooks.steps, want) {
		t.Errorf("pass steps = %v, want %v", hooks.steps, want)
	}
	if hooks.exports != 1 {
		t.Errorf("exports = %d, want 1", hooks.exports)
	}
	if hooks.misses == 0 || hooks.sets == 0 {
		t.Errorf("cache misses/sets = %d/%d, want both > 0", hooks.misses, hooks.sets)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu                 sync.Mutex
	starts, completes  int
	steps              []int
	exports            int
	hits, misses, sets int
}

func (h *recordingHooks) OnGenerateStart(context.Context, string, int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnPass(_ context.Context, _ string, _ int, step int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, step)
}

func (h *recordingHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completes++
}

func (h *recordingHooks) OnExportComplete(context.Context, []string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exports++
}

func (h *recordingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *recordingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *recordingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}
