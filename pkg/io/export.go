package io

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/terrain"
)

// Supported output formats.
const (
	FormatPNG  = "png"
	FormatTIFF = "tiff"
	FormatJSON = "json"
)

// MaxScale bounds the integer upscaling factor for image formats.
const MaxScale = 16

// ValidFormats lists every format accepted by [Export], in display order.
var ValidFormats = []string{FormatPNG, FormatTIFF, FormatJSON}

// IsValidFormat reports whether format is one of [ValidFormats].
func IsValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Export encodes g in the given format at its native resolution.
func Export(g *terrain.Grid, format string, w io.Writer) error {
	return ExportScaled(g, format, 1, w)
}

// ExportScaled encodes g in the given format. Image formats are upscaled by
// the integer factor scale; JSON ignores it.
func ExportScaled(g *terrain.Grid, format string, scale int, w io.Writer) error {
	if scale < 1 || scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput,
			"scale must be between 1 and %d, got %d", MaxScale, scale)
	}
	switch format {
	case FormatPNG:
		return WritePNG(g, scale, w)
	case FormatTIFF:
		return WriteTIFF(g, scale, w)
	case FormatJSON:
		return WriteJSON(g, w)
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"unsupported format %q (valid: %v)", format, ValidFormats)
	}
}

// ExportFile writes g to path in the given format.
func ExportFile(g *terrain.Grid, format string, scale int, path string) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ExportScaled(g, format, scale, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
