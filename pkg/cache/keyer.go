package cache

// GridKeyOpts identifies a generated heightfield.
//
// Every field that changes the generated values must be part of the key.
type GridKeyOpts struct {
	Algorithm  string  `json:"algorithm"`
	BaseWidth  int     `json:"base_width"`
	BaseHeight int     `json:"base_height"`
	Iterations int     `json:"iterations"`
	Roughness  float64 `json:"roughness"`
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	Seed       uint64  `json:"seed"`
}

// ArtifactKeyOpts identifies an encoding of a heightfield.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Scale  int    `json:"scale"`
}

// Keyer produces cache keys.
type Keyer interface {
	// GridKey returns the key for a generated heightfield.
	GridKey(opts GridKeyOpts) string

	// ArtifactKey returns the key for an encoded artifact of the grid whose
	// serialized form hashes to gridHash.
	ArtifactKey(gridHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GridKey returns "grid:<sha256>".
func (DefaultKeyer) GridKey(opts GridKeyOpts) string {
	return hashKey("grid", opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", gridHash, opts)
}

var _ Keyer = DefaultKeyer{}
