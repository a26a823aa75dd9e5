package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// nodeFile is the on-disk shape of a node's inputs.
type nodeFile struct {
	Active           int        `json:"active,omitempty" toml:"active,omitempty" yaml:"active,omitempty"`
	NormalizeWeights bool       `json:"normalize_weights" toml:"normalize_weights" yaml:"normalize_weights"`
	List             []itemFile `json:"list" toml:"list" yaml:"list"`
}

type itemFile struct {
	Name     string    `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Weight   *float64  `json:"weight,omitempty" toml:"weight,omitempty" yaml:"weight,omitempty"`
	Absolute bool      `json:"absolute" toml:"absolute" yaml:"absolute"`
	Scale    []float64 `json:"scale,omitempty" toml:"scale,omitempty" yaml:"scale,omitempty"`
}

// ReadNode decodes node inputs from r.
//
// Unknown fields are rejected. Missing fields take the schema defaults: weight 1, relative mode and a
// scale of (1, 1, 1). A scale must have exactly three components. The
// decoded inputs are validated with [node.Inputs.Validate].
//
// ReadNode does not close r.
func ReadNode(r io.Reader, format Format) (node.Inputs, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return node.Inputs{}, fmt.Errorf("read: %w", err)
	}

	var f nodeFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err = dec.Decode(&f); err == io.EOF {
			err = nil
		}
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &f)
		if err == nil {
			if extra := md.Undecoded(); len(extra) > 0 {
				err = fmt.Errorf("unknown field %q", extra[0].String())
			}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&f); err == io.EOF {
			err = nil
		}
	default:
		return node.Inputs{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported node format %q", format)
	}
	if err != nil {
		return node.Inputs{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", format)
	}

	in, err := f.inputs()
	if err != nil {
		return node.Inputs{}, err
	}
	if err := in.Validate(); err != nil {
		return node.Inputs{}, err
	}
	return in, nil
}

func (f nodeFile) inputs() (node.Inputs, error) {
	in := node.Inputs{
		Active:           f.Active,
		NormalizeWeights: f.NormalizeWeights,
		List:             make(blend.List, 0, len(f.List)),
	}
	for i, it := range f.List {
		c := blend.NewContribution(it.Name)
		c.Absolute = it.Absolute
		if it.Weight != nil {
			c.Weight = *it.Weight
		}
		if it.Scale != nil {
			if len(it.Scale) != 3 {
				return node.Inputs{}, errs.New(errs.ErrCodeInvalidInput,
					"list[%d]: scale needs 3 components, got %d", i, len(it.Scale))
			}
			c.Scale = r3.Vec{X: it.Scale[0], Y: it.Scale[1], Z: it.Scale[2]}
		}
		in.List = append(in.List, c)
	}
	return in, nil
}

// ImportNode reads node inputs from the file at path. The format follows the
// file extension (see [FormatFromPath]).
func ImportNode(path string) (node.Inputs, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return node.Inputs{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return node.Inputs{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return node.Inputs{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	in, err := ReadNode(f, format)
	if err != nil {
		return node.Inputs{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
