// Package io encodes and decodes heightfields.
//
// # Formats
//
//   - png: 8-bit grayscale image, black at the low end of the grid's range and
//     white at the high end
//   - tiff: 16-bit grayscale image, the usual heightmap interchange format for
//     terrain and GIS tools
//   - json: lossless dump of the raw elevations and the normalization range
//
// Image formats normalize each cell with [terrain.Grid.Normalize] and clamp the
// result to [0, 1], so a range narrowed with SetMin/SetMax saturates instead of
// wrapping. A degenerate range (all cells equal) renders black.
//
// # JSON Format
//
//	{
//	  "width": 3,
//	  "height": 2,
//	  "range": {"start": -0.8, "end": 0.9},
//	  "values": [0.1, -0.8, 0.3, 0.9, 0.0, 0.2]
//	}
//
// Values are row-major. [ReadJSON] validates the shape and restores the stored
// range, so a grid survives export and re-import unchanged.
//
// # Usage
//
//	var buf bytes.Buffer
//	if err := io.Export(grid, io.FormatPNG, &buf); err != nil {
//	    log.Fatal(err)
//	}
//
//	g, err := io.ImportJSON("island.json")
package io
