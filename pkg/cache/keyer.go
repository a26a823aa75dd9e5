package cache

// ResultKeyOpts holds settings that change an evaluated result without being
// part of the node's inputs.
type ResultKeyOpts struct {
	// Engine identifies the evaluation code. Bumping it invalidates results
	// computed by older builds.
	Engine string
}

// ArtifactKeyOpts holds settings that change a rendered graph image.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey returns the key for the outputs of a node whose inputs hash
	// to inputHash.
	ResultKey(inputHash string, opts ResultKeyOpts) string

	// ArtifactKey returns the key for a rendered image of the graph whose
	// content hashes to graphHash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:<hash>".
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
