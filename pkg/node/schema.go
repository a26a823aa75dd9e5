package node

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/scalelist/pkg/dag"
)

const (
	// TypeName is the registered node type name.
	TypeName = "scaleList"
	// TypeID is the registered node type id.
	TypeID uint32 = 0x0013b1c7
)

// Attribute categories. Compute requests are accepted only for attributes in
// [CategoryOutput].
const (
	CategoryList   = "List"
	CategoryScale  = "Scale"
	CategoryOutput = "Output"
)

// Long attribute names.
const (
	AttrActive           = "active"
	AttrNormalizeWeights = "normalizeWeights"
	AttrList             = "list"
	AttrName             = "name"
	AttrWeight           = "weight"
	AttrAbsolute         = "absolute"
	AttrScale            = "scale"
	AttrScaleX           = "scaleX"
	AttrScaleY           = "scaleY"
	AttrScaleZ           = "scaleZ"
	AttrOutput           = "output"
	AttrOutputX          = "outputX"
	AttrOutputY          = "outputY"
	AttrOutputZ          = "outputZ"
	AttrMatrix           = "matrix"
	AttrInverseMatrix    = "inverseMatrix"
)

// Kind is the value type of an attribute.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindFloat
	KindString
	KindMatrix
	KindCompound
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindMatrix:
		return "matrix"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Attribute describes one attribute of the node.
type Attribute struct {
	Name       string
	Short      string
	Kind       Kind
	Default    any      // nil for compounds and matrices
	Min, Max   *float64 // suggested bounds, nil when unbounded
	Writable   bool
	Storable   bool
	Array      bool     // one value per list element
	Parent     string   // enclosing compound, empty at the top level
	Children   []string // members of a compound, in declaration order
	Categories []string
}

// IsCompound reports whether a groups other attributes.
func (a *Attribute) IsCompound() bool { return a.Kind == KindCompound }

// InCategory reports whether a belongs to category.
func (a *Attribute) InCategory(category string) bool {
	return slices.Contains(a.Categories, category)
}

// Schema is the static attribute table of the node type. It is built once
// and never modified, so it may be shared between goroutines.
type Schema struct {
	TypeName string
	TypeID   uint32

	attrs   []*Attribute
	byName  map[string]*Attribute
	affects map[string][]string
	graph   *dag.DAG
}

var (
	defaultSchema     *Schema
	defaultSchemaOnce sync.Once
)

// DefaultSchema returns the scaleList schema.
func DefaultSchema() *Schema {
	defaultSchemaOnce.Do(func() {
		defaultSchema = buildSchema()
	})
	return defaultSchema
}

func bound(v float64) *float64 { return &v }

func buildSchema() *Schema {
	outputs := []string{AttrOutputX, AttrOutputY, AttrOutputZ, AttrMatrix, AttrInverseMatrix}
	list := []string{CategoryList}
	scale := []string{CategoryList, CategoryScale}
	output := []string{CategoryOutput}

	attrs := []*Attribute{
		{Name: AttrActive, Short: "a", Kind: KindInt, Default: 0, Writable: true, Storable: true},
		{Name: AttrNormalizeWeights, Short: "nw", Kind: KindBool, Default: false, Writable: true, Storable: true},
		{
			Name: AttrList, Short: "l", Kind: KindCompound, Array: true, Writable: true, Storable: true,
			Children:   []string{AttrName, AttrWeight, AttrAbsolute, AttrScale},
			Categories: list,
		},
		{Name: AttrName, Short: "n", Kind: KindString, Default: "", Array: true, Writable: true, Storable: true, Parent: AttrList, Categories: list},
		{
			Name: AttrWeight, Short: "w", Kind: KindFloat, Default: 1.0, Min: bound(-1), Max: bound(1),
			Array: true, Writable: true, Storable: true, Parent: AttrList, Categories: list,
		},
		{Name: AttrAbsolute, Short: "abs", Kind: KindBool, Default: false, Array: true, Writable: true, Storable: true, Parent: AttrList, Categories: list},
		{
			Name: AttrScale, Short: "s", Kind: KindCompound, Array: true, Writable: true, Storable: true, Parent: AttrList,
			Children:   []string{AttrScaleX, AttrScaleY, AttrScaleZ},
			Categories: scale,
		},
		{Name: AttrScaleX, Short: "sx", Kind: KindFloat, Default: 1.0, Array: true, Writable: true, Storable: true, Parent: AttrScale, Categories: scale},
		{Name: AttrScaleY, Short: "sy", Kind: KindFloat, Default: 1.0, Array: true, Writable: true, Storable: true, Parent: AttrScale, Categories: scale},
		{Name: AttrScaleZ, Short: "sz", Kind: KindFloat, Default: 1.0, Array: true, Writable: true, Storable: true, Parent: AttrScale, Categories: scale},
		{
			Name: AttrOutput, Short: "o", Kind: KindCompound,
			Children:   []string{AttrOutputX, AttrOutputY, AttrOutputZ},
			Categories: output,
		},
		{Name: AttrOutputX, Short: "ox", Kind: KindFloat, Default: 1.0, Parent: AttrOutput, Categories: output},
		{Name: AttrOutputY, Short: "oy", Kind: KindFloat, Default: 1.0, Parent: AttrOutput, Categories: output},
		{Name: AttrOutputZ, Short: "oz", Kind: KindFloat, Default: 1.0, Parent: AttrOutput, Categories: output},
		{Name: AttrMatrix, Short: "m", Kind: KindMatrix, Categories: output},
		{Name: AttrInverseMatrix, Short: "im", Kind: KindMatrix, Categories: output},
	}

	s := &Schema{
		TypeName: TypeName,
		TypeID:   TypeID,
		attrs:    attrs,
		byName:   make(map[string]*Attribute, 2*len(attrs)),
		affects: map[string][]string{
			AttrActive:           outputs,
			AttrNormalizeWeights: outputs,
			AttrWeight:           outputs,
			AttrAbsolute:         outputs,
			AttrScaleX:           {AttrOutputX, AttrMatrix, AttrInverseMatrix},
			AttrScaleY:           {AttrOutputY, AttrMatrix, AttrInverseMatrix},
			AttrScaleZ:           {AttrOutputZ, AttrMatrix, AttrInverseMatrix},
		},
	}
	for _, a := range attrs {
		s.byName[a.Name] = a
		s.byName[a.Short] = a
	}
	g, err := s.buildGraph()
	if err != nil {
		panic(fmt.Sprintf("scaleList schema: %v", err))
	}
	s.graph = g
	return s
}

func (s *Schema) buildGraph() (*dag.DAG, error) {
	g := dag.New(dag.Metadata{"type": s.TypeName, "id": s.TypeID})
	for _, a := range s.attrs {
		if a.IsCompound() {
			continue
		}
		n := dag.Node{
			ID: a.Name,
			Meta: dag.Metadata{
				"short":    a.Short,
				"kind":     a.Kind.String(),
				"parent":   a.Parent,
				"writable": a.Writable,
			},
		}
		if a.Default != nil {
			n.Meta["default"] = a.Default
		}
		if a.InCategory(CategoryOutput) {
			n.Row = 1
			n.Kind = dag.NodeKindOutput
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	for _, a := range s.attrs {
		for _, out := range s.affects[a.Name] {
			if err := g.AddEdge(dag.Edge{From: a.Name, To: out}); err != nil {
				return nil, fmt.Errorf("%s affects %s: %w", a.Name, out, err)
			}
		}
	}
	return g, nil
}

// Attributes returns every attribute in declaration order.
func (s *Schema) Attributes() []*Attribute { return slices.Clone(s.attrs) }

// Attribute looks an attribute up by its long or short name.
func (s *Schema) Attribute(name string) (*Attribute, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// HasCategory reports whether the named attribute belongs to category.
// Unknown names belong to no category.
func (s *Schema) HasCategory(name, category string) bool {
	a, ok := s.byName[name]
	return ok && a.InCategory(category)
}

// Inputs returns the writable leaf attributes in declaration order.
func (s *Schema) Inputs() []*Attribute {
	var out []*Attribute
	for _, a := range s.attrs {
		if a.Writable && !a.IsCompound() {
			out = append(out, a)
		}
	}
	return out
}

// Outputs returns the computed leaf attributes in declaration order.
func (s *Schema) Outputs() []*Attribute {
	var out []*Attribute
	for _, a := range s.attrs {
		if a.InCategory(CategoryOutput) && !a.IsCompound() {
			out = append(out, a)
		}
	}
	return out
}

// Affects returns the long names of the outputs that depend on the named
// attribute. A compound affects whatever its members affect.
func (s *Schema) Affects(name string) []string {
	a, ok := s.byName[name]
	if !ok {
		return nil
	}
	if !a.IsCompound() {
		return slices.Clone(s.affects[a.Name])
	}

	var out []string
	for _, child := range a.Children {
		for _, o := range s.Affects(child) {
			if !slices.Contains(out, o) {
				out = append(out, o)
			}
		}
	}
	return s.ordered(out)
}

// AffectedBy returns the long names of the inputs the named output depends
// on. For the output compound, the union over its members is returned.
func (s *Schema) AffectedBy(name string) []string {
	a, ok := s.byName[name]
	if !ok {
		return nil
	}
	if a.IsCompound() {
		var out []string
		for _, child := range a.Children {
			for _, in := range s.AffectedBy(child) {
				if !slices.Contains(out, in) {
					out = append(out, in)
				}
			}
		}
		return s.ordered(out)
	}
	return slices.Clone(s.graph.Parents(a.Name))
}

// ordered sorts names by declaration order.
func (s *Schema) ordered(names []string) []string {
	pos := make(map[string]int, len(s.attrs))
	for i, a := range s.attrs {
		pos[a.Name] = i
	}
	slices.SortFunc(names, func(a, b string) int { return pos[a] - pos[b] })
	return names
}

// Graph returns the attribute dependency graph: leaf inputs in row 0, leaf
// outputs in row 1, and an edge for every "affects" relation. The graph is
// shared and must not be modified.
func (s *Schema) Graph() *dag.DAG { return s.graph }
