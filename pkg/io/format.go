package io

import (
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/scalelist/pkg/errors"
)

// Format names a node or result file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []string{string(FormatJSON), string(FormatTOML), string(FormatYAML)}

// ParseFormat validates a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yml" {
		s = string(FormatYAML)
	}
	if err := errs.ValidateFormat(s, Formats...); err != nil {
		return "", err
	}
	return Format(s), nil
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}
