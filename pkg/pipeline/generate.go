package pipeline

import (
	"github.com/matzehuels/terrain/pkg/terrain"
	"github.com/matzehuels/terrain/pkg/terrain/diamondsquare"
	"github.com/matzehuels/terrain/pkg/terrain/midpoint"
)

// NewGenerator validates opts and builds the engine they select.
// onPass may be nil.
func NewGenerator(opts Options, onPass terrain.PassFunc) (terrain.Generator, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	if opts.IsMidpoint() {
		g, err := midpoint.New(opts.MidpointConfig(), midpoint.WithPassHook(onPass))
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	g, err := diamondsquare.New(opts.DiamondSquareConfig(), diamondsquare.WithPassHook(onPass))
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Generate runs the selected engine without caching.
func Generate(opts Options, onPass terrain.PassFunc) (*terrain.Grid, error) {
	g, err := NewGenerator(opts, onPass)
	if err != nil {
		return nil, err
	}
	return g.Generate(), nil
}
