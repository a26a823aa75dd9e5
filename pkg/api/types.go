package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/store"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// EvaluateResponse is returned by the evaluate routes.
type EvaluateResponse struct {
	Outputs    node.Outputs `json:"outputs"`
	InputHash  string       `json:"input_hash"`
	CacheHit   bool         `json:"cache_hit"`
	Items      int          `json:"items"`
	DurationMS float64      `json:"duration_ms"`
}

// ComputeResponse is returned by POST /v1/compute/{attribute}. Value is set
// for the scalar outputs outputX, outputY and outputZ.
type ComputeResponse struct {
	Attribute string       `json:"attribute"`
	Value     *float64     `json:"value,omitempty"`
	Outputs   node.Outputs `json:"outputs"`
}

// NodeSummary describes a stored snapshot without its inputs.
type NodeSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize returns the listing form of a snapshot.
func Summarize(s store.Snapshot) NodeSummary {
	return NodeSummary{
		ID:        s.ID,
		Name:      s.Name,
		Items:     len(s.Inputs.List),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// SchemaInfo is the JSON form of a node schema.
type SchemaInfo struct {
	TypeName   string          `json:"type_name"`
	TypeID     uint32          `json:"type_id"`
	Attributes []AttributeInfo `json:"attributes"`
}

// AttributeInfo is the JSON form of one attribute.
type AttributeInfo struct {
	Name       string   `json:"name"`
	Short      string   `json:"short"`
	Kind       string   `json:"kind"`
	Default    any      `json:"default,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Writable   bool     `json:"writable"`
	Storable   bool     `json:"storable"`
	Array      bool     `json:"array,omitempty"`
	Parent     string   `json:"parent,omitempty"`
	Children   []string `json:"children,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Affects    []string `json:"affects,omitempty"`
}

// DescribeSchema converts s to its JSON form.
func DescribeSchema(s *node.Schema) SchemaInfo {
	info := SchemaInfo{TypeName: s.TypeName, TypeID: s.TypeID}
	for _, a := range s.Attributes() {
		info.Attributes = append(info.Attributes, AttributeInfo{
			Name:       a.Name,
			Short:      a.Short,
			Kind:       a.Kind.String(),
			Default:    a.Default,
			Min:        a.Min,
			Max:        a.Max,
			Writable:   a.Writable,
			Storable:   a.Storable,
			Array:      a.Array,
			Parent:     a.Parent,
			Children:   a.Children,
			Categories: a.Categories,
			Affects:    s.Affects(a.Name),
		})
	}
	return info
}
