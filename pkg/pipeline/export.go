package pipeline

import (
	"bytes"
	"fmt"

	terrainio "github.com/matzehuels/terrain/pkg/io"
	"github.com/matzehuels/terrain/pkg/terrain"
)

// Export encodes g in every requested format without caching.
func Export(g *terrain.Grid, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var buf bytes.Buffer
		if err := terrainio.ExportScaled(g, format, opts.Scale, &buf); err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = buf.Bytes()
	}
	return artifacts, nil
}
