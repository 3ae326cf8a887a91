package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/terrain/pkg/errors"
	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/pipeline"
)

// runCLI executes the root command with args and returns its error.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"cache", "completion", "convert", "generate", "inspect", "preview", "serve"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"png"}},
		{"png", []string{"png"}},
		{"png,json", []string{"png", "json"}},
		{" TIFF , json,", []string{"tiff", "json"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default single", "", []string{"png"}, map[string]string{"png": "diamond-square.png"}},
		{"explicit extension", "island.png", []string{"png"}, map[string]string{"png": "island.png"}},
		{"missing extension", "island", []string{"tiff"}, map[string]string{"tiff": "island.tiff"}},
		{"multiple", "out/island.png", []string{"png", "json"},
			map[string]string{"png": "out/island.png", "json": "out/island.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPaths(tt.output, tt.formats, pipeline.AlgorithmDiamondSquare)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := outputPaths("dir/", []string{"png"}, "x"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("trailing slash error = %v, want INVALID_PATH", err)
	}
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	base := filepath.Join(dir, "island")

	err := runCLI(t, "generate", "-i", "3", "-s", "11", "-f", "png,json", "-o", base)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, ext := range []string{".png", ".json"} {
		if info, err := os.Stat(base + ext); err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty (err %v)", base+ext, err)
		}
	}

	g, err := terrainio.ImportJSON(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if w, h := g.Size(); w != 33 || h != 33 {
		t.Errorf("size = %dx%d, want 33x33", w, h)
	}

	opts := pipeline.DefaultOptions()
	opts.Iterations = 3
	opts.Seed = 11
	want, err := pipeline.Generate(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Equal(want) {
		t.Error("CLI output should match direct generation")
	}
}

func TestGenerateCommandMidpoint(t *testing.T) {
	out := filepath.Join(t.TempDir(), "profile.json")
	if err := runCLI(t, "--no-cache", "generate", "-a", "md", "-i", "5", "-f", "json", "-o", out); err != nil {
		t.Fatalf("generate: %v", err)
	}
	g, err := terrainio.ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := g.Size(); w != 129 || h != 1 {
		t.Errorf("size = %dx%d, want 129x1", w, h)
	}
}

func TestGenerateCommandInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"roughness", []string{"generate", "-r", "0.5"}, errors.ErrCodeInvalidConfig},
		{"format", []string{"generate", "-f", "bmp"}, errors.ErrCodeInvalidFormat},
		{"algorithm", []string{"generate", "-a", "perlin"}, errors.ErrCodeInvalidConfig},
		{"scale", []string{"generate", "--scale", "99"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, append([]string{"--no-cache"}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestInspectCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "grid.json")
	if err := runCLI(t, "--no-cache", "generate", "-f", "json", "-o", out); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "inspect", "--bins", "5", out); err != nil {
		t.Errorf("inspect: %v", err)
	}

	err := runCLI(t, "inspect", filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if err := runCLI(t, "inspect", "--bins", "0", out); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bins 0 error = %v, want INVALID_INPUT", err)
	}
}

func TestGenerateCommandRejectsZeros(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"base width", []string{"--base-width", "0"}, errors.ErrCodeInvalidConfig},
		{"base height", []string{"--base-height", "0"}, errors.ErrCodeInvalidConfig},
		{"roughness", []string{"-r", "0"}, errors.ErrCodeInvalidConfig},
		{"interval", []string{"--low", "0", "--high", "0"}, errors.ErrCodeInvalidConfig},
		{"scale", []string{"--scale", "0"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "grid.png")
			args := append([]string{"--no-cache", "generate", "-o", out}, tt.args...)
			if err := runCLI(t, args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("no file should be written for rejected options")
			}
		})
	}
}

func TestGenerateCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"--no-cache", "generate", "-o", filepath.Join(t.TempDir(), "grid.png")})
	if err := root.ExecuteContext(ctx); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "grid.json")
	if err := runCLI(t, "--no-cache", "generate", "-f", "json", "-o", in); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "grid.png")
	if err := runCLI(t, "convert", in, out, "--scale", "2"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 34 || b.Dy() != 34 {
		t.Errorf("image = %dx%d, want 34x34", b.Dx(), b.Dy())
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no extension", []string{"convert", in, filepath.Join(dir, "noext")}, errors.ErrCodeInvalidFormat},
		{"bad format", []string{"convert", in, filepath.Join(dir, "x.bmp")}, errors.ErrCodeInvalidFormat},
		{"missing input", []string{"convert", filepath.Join(dir, "none.json"), out}, errors.ErrCodeFileNotFound},
		{"bad scale", []string{"convert", in, out, "--scale", "99"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runCLI(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}
