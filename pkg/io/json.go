package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/terrain/pkg/errors"
	"github.com/matzehuels/terrain/pkg/terrain"
)

type heightfield struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Range  terrain.Range `json:"range"`
	Values []float64     `json:"values"`
}

// WriteJSON encodes g as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *terrain.Grid, w io.Writer) error {
	out := heightfield{
		Width:  g.Width(),
		Height: g.Height(),
		Range:  g.Range(),
		Values: g.Values(),
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalGrid returns the JSON encoding of g.
func MarshalGrid(g *terrain.Grid) ([]byte, error) {
	return json.Marshal(heightfield{
		Width:  g.Width(),
		Height: g.Height(),
		Range:  g.Range(),
		Values: g.Values(),
	})
}

// ReadJSON decodes a heightfield from r.
//
// It fails with INVALID_INPUT if the document is malformed or the value count
// does not match width×height, and with INVALID_RANGE if the stored range is
// inverted. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*terrain.Grid, error) {
	var data heightfield
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode heightfield")
	}
	return fromDocument(data)
}

// UnmarshalGrid decodes a heightfield produced by [MarshalGrid].
func UnmarshalGrid(b []byte) (*terrain.Grid, error) {
	var data heightfield
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode heightfield")
	}
	return fromDocument(data)
}

func fromDocument(data heightfield) (*terrain.Grid, error) {
	g, err := terrain.FromValues(data.Width, data.Height, data.Values)
	if err != nil {
		return nil, err
	}
	// A constant grid has a degenerate range that SetRange would reject.
	if data.Range != g.Range() {
		if err := g.SetRange(data.Range); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ImportJSON reads a JSON heightfield file at path.
// A missing file fails with FILE_NOT_FOUND.
func ImportJSON(path string) (*terrain.Grid, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
