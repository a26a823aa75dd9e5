package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/store"
)

// Coded errors wrap the package sentinels, so callers can match either.
func TestSentinelChains(t *testing.T) {
	n := node.NewFromInputs(node.Inputs{List: blend.List{{Name: "pose", Weight: 1}}})
	computeErr := n.Compute(node.AttrWeight)
	if !errors.Is(computeErr, node.ErrUnknownAttribute) {
		t.Fatalf("Compute(weight) = %v, want ErrUnknownAttribute", computeErr)
	}

	tests := []struct {
		name     string
		err      error
		sentinel error
		code     errs.Code
		msg      string
	}{
		{
			name:     "unknown attribute",
			err:      fmt.Errorf("compute: %w", errs.Wrap(errs.ErrCodeUnknownAttribute, computeErr, "scaleList does not compute %q", "weight")),
			sentinel: node.ErrUnknownAttribute,
			code:     errs.ErrCodeUnknownAttribute,
			msg:      `scaleList does not compute "weight"`,
		},
		{
			name:     "missing node",
			err:      errs.Wrap(errs.ErrCodeNodeNotFound, fmt.Errorf("%w: %q", store.ErrNotFound, "arm"), "no node named %q", "arm"),
			sentinel: store.ErrNotFound,
			code:     errs.ErrCodeNodeNotFound,
			msg:      `no node named "arm"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false", tt.sentinel)
			}
			if got := errs.GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := errs.UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}

	if errs.GetCode(computeErr) != "" {
		t.Error("the bare node error should carry no code")
	}
}
