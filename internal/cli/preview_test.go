package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/terrain/pkg/cache"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

func newTestPreview(t *testing.T) previewModel {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	opts := pipeline.DefaultOptions()
	opts.Seed = 3
	return newPreviewModel(context.Background(), runner, opts)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and, if a command is returned, runs it and feeds the
// resulting message back into the model.
func press(t *testing.T, m previewModel, msg tea.Msg) previewModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(previewModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, ok := out.(tea.QuitMsg); !ok {
				next, _ = m.Update(out)
				m = next.(previewModel)
			}
		}
	}
	return m
}

func TestPreviewInitGenerates(t *testing.T) {
	m := newTestPreview(t)
	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should return a generate command")
	}
	next, _ := m.Update(cmd())
	m = next.(previewModel)
	if m.err != nil {
		t.Fatalf("generate: %v", m.err)
	}
	if m.loading || m.grid == nil {
		t.Fatal("grid should be loaded")
	}
	if w, h := m.grid.Size(); w != 17 || h != 17 {
		t.Errorf("size = %dx%d, want 17x17", w, h)
	}
}

func TestPreviewKeys(t *testing.T) {
	tests := []struct {
		name  string
		keys  []string
		check func(t *testing.T, o pipeline.Options)
	}{
		{"roughness up", []string{"+"}, func(t *testing.T, o pipeline.Options) {
			if o.Roughness != 1.15 {
				t.Errorf("Roughness = %g, want 1.15", o.Roughness)
			}
		}},
		{"roughness floor", []string{"-", "-", "-"}, func(t *testing.T, o pipeline.Options) {
			if o.Roughness != 1.0 {
				t.Errorf("Roughness = %g, want 1.0", o.Roughness)
			}
		}},
		{"iterations", []string{"]", "]", "["}, func(t *testing.T, o pipeline.Options) {
			if o.Iterations != pipeline.DefaultIterations+1 {
				t.Errorf("Iterations = %d, want %d", o.Iterations, pipeline.DefaultIterations+1)
			}
		}},
		{"iterations floor", []string{"[", "[", "[", "["}, func(t *testing.T, o pipeline.Options) {
			if o.Iterations != 0 {
				t.Errorf("Iterations = %d, want 0", o.Iterations)
			}
		}},
		{"toggle algorithm", []string{"a"}, func(t *testing.T, o pipeline.Options) {
			if !o.IsMidpoint() {
				t.Errorf("Algorithm = %q, want midpoint", o.Algorithm)
			}
		}},
		{"toggle back", []string{"a", "a"}, func(t *testing.T, o pipeline.Options) {
			if o.Algorithm != pipeline.AlgorithmDiamondSquare {
				t.Errorf("Algorithm = %q, want diamond-square", o.Algorithm)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestPreview(t)
			for _, k := range tt.keys {
				m = press(t, m, keyRunes(k))
			}
			if m.err != nil {
				t.Fatalf("generate: %v", m.err)
			}
			tt.check(t, m.opts)
		})
	}
}

func TestPreviewReseedChangesGrid(t *testing.T) {
	m := newTestPreview(t)
	next, _ := m.Update(m.Init()())
	m = next.(previewModel)
	before := m.grid

	// A reseed could in principle draw the same seed; retry a few times.
	for range 5 {
		m = press(t, m, keyRunes("r"))
		if !m.grid.Equal(before) {
			return
		}
	}
	t.Error("reseeding should produce a different grid")
}

func TestPreviewQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := newTestPreview(t)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%q: expected quit command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q: command should quit", key.String())
		}
	}
}

func TestPreviewView(t *testing.T) {
	m := newTestPreview(t)
	if v := m.View(); !strings.Contains(v, "generating...") {
		t.Errorf("view before first grid should show loading, got %q", v)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 12})
	m = next.(previewModel)
	next, _ = m.Update(m.Init()())
	m = next.(previewModel)

	v := m.View()
	if !strings.Contains(v, "diamond-square") || !strings.Contains(v, "17×17") {
		t.Errorf("status line missing options: %q", v)
	}
	if !strings.Contains(v, "▀") {
		t.Error("diamond-square view should render half-blocks")
	}

	m = press(t, m, keyRunes("a"))
	if v := m.View(); !strings.Contains(v, "█") {
		t.Error("midpoint view should render a profile")
	}
}

func TestRenderShadedBounds(t *testing.T) {
	g := mustGrid(t, 4, 4, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)
	out := renderShaded(g, 2, 2)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Errorf("renderShaded(2 cols, 2 rows) produced %d lines, want 1", len(lines))
	}
	if n := strings.Count(out, "▀"); n != 2 {
		t.Errorf("renderShaded produced %d cells, want 2", n)
	}
}

func TestRenderProfileDegenerate(t *testing.T) {
	g := mustGrid(t, 3, 1, 5, 5, 5)
	out := renderProfile(g, 10, 3)
	if n := strings.Count(out, "█"); n != 3 {
		t.Errorf("flat profile should fill one row of 3 cells, got %d", n)
	}
}
