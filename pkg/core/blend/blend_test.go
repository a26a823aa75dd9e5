package blend

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec { return r3.Vec{X: x, Y: y, Z: z} }

func TestAverageEmpty(t *testing.T) {
	for _, items := range []List{nil, {}} {
		if got := Average(items); got != One {
			t.Errorf("Average(%v) = %v, want %v", items, got, One)
		}
	}
}

func TestAverageSingle(t *testing.T) {
	tests := []struct {
		name string
		item Contribution
		want r3.Vec
	}{
		{
			name: "absolute full weight",
			item: Contribution{Weight: 1, Absolute: true, Scale: vec(2, 2, 2)},
			want: vec(2, 2, 2),
		},
		{
			name: "absolute half weight",
			item: Contribution{Weight: 0.5, Absolute: true, Scale: vec(3, 5, -1)},
			want: Lerp(One, vec(3, 5, -1), 0.5),
		},
		{
			name: "absolute extrapolates",
			item: Contribution{Weight: 2, Absolute: true, Scale: vec(2, 2, 2)},
			want: vec(3, 3, 3),
		},
		{
			name: "absolute zero weight",
			item: Contribution{Weight: 0, Absolute: true, Scale: vec(9, 9, 9)},
			want: One,
		},
		{
			name: "relative",
			item: Contribution{Weight: 0.5, Scale: vec(2, 4, 6)},
			want: vec(1, 2, 3),
		},
		{
			name: "relative negative weight",
			item: Contribution{Weight: -1, Scale: vec(2, 3, 4)},
			want: vec(-2, -3, -4),
		},
		{
			name: "relative zero weight skipped",
			item: Contribution{Weight: 0, Scale: vec(5, 5, 5)},
			want: One,
		},
		{
			name: "relative subnormal weight skipped",
			item: Contribution{Weight: Epsilon / 2, Scale: vec(5, 5, 5)},
			want: One,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Average(List{tt.item})
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("Average() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestAverageSingleAbsoluteIsLerp(t *testing.T) {
	for _, w := range []float64{-1, -0.25, 0, 0.3, 0.75, 1, 1.5} {
		s := vec(0.5, 2, 7)
		got := Average(List{{Weight: w, Absolute: true, Scale: s}})
		want := Lerp(One, s, w)
		if got != want {
			t.Errorf("w=%v: Average() = %v, want %v", w, got, want)
		}
	}
}

func TestAverageSingleRelativeIsProduct(t *testing.T) {
	for _, w := range []float64{-1, -0.25, 0.3, 1} {
		s := vec(0.5, 2, 7)
		got := Average(List{{Weight: w, Scale: s}})
		want := vec(1*s.X*w, 1*s.Y*w, 1*s.Z*w)
		if got != want {
			t.Errorf("w=%v: Average() = %v, want %v", w, got, want)
		}
	}
}

func TestAverageOrderSensitive(t *testing.T) {
	a := Contribution{Name: "A", Weight: 0.5, Absolute: true, Scale: vec(2, 2, 2)}
	b := Contribution{Name: "B", Weight: 0.5, Absolute: true, Scale: vec(4, 4, 4)}

	ab := Average(List{a, b})
	ba := Average(List{b, a})

	if ab != vec(2.75, 2.75, 2.75) {
		t.Errorf("Average(A, B) = %v, want (2.75, 2.75, 2.75)", ab)
	}
	if ba != vec(2.25, 2.25, 2.25) {
		t.Errorf("Average(B, A) = %v, want (2.25, 2.25, 2.25)", ba)
	}
	if ab == ba {
		t.Error("absolute blending should depend on order")
	}
}

func TestAverageMixed(t *testing.T) {
	items := List{
		{Name: "pose", Weight: 1, Absolute: true, Scale: vec(2, 2, 2)},
		{Name: "squash", Weight: 0.5, Scale: vec(2, 1, 2)},
		{Name: "off", Weight: 0, Scale: vec(100, 100, 100)},
		{Name: "settle", Weight: 0.5, Absolute: true, Scale: vec(1, 1, 1)},
	}

	// pose: (2,2,2); squash: (2,1,2); off: skipped; settle: lerp -> (1.5,1,1.5)
	want := vec(1.5, 1, 1.5)
	if d := cmp.Diff(want, Average(items), cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Errorf("Average() mismatch (-want +got):\n%s", d)
	}
}

func TestAverageDoesNotMutate(t *testing.T) {
	items := List{{Weight: 0.5, Absolute: true, Scale: vec(2, 2, 2)}}
	orig := items.Clone()
	Average(items)
	if d := cmp.Diff(orig, items); d != "" {
		t.Errorf("Average mutated its input (-want +got):\n%s", d)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		weights     []float64
		want        []float64
		wantChanged bool
	}{
		{"opposite weights", []float64{2, -2}, []float64{0.5, -0.5}, true},
		{"unequal", []float64{3, 1}, []float64{0.75, 0.25}, true},
		{"below one", []float64{0.25, 0.25}, []float64{0.5, 0.5}, true},
		{"already one", []float64{0.5, -0.5}, []float64{0.5, -0.5}, false},
		{"single one", []float64{1}, []float64{1}, false},
		{"zero sum", []float64{0, 0}, []float64{0, 0}, false},
		{"empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make(List, len(tt.weights))
			for i, w := range tt.weights {
				items[i] = Contribution{Name: "c", Weight: w, Absolute: i%2 == 0, Scale: vec(float64(i+1), 2, 3)}
			}

			changed := Normalize(items)
			if changed != tt.wantChanged {
				t.Errorf("Normalize() changed = %v, want %v", changed, tt.wantChanged)
			}

			for i, item := range items {
				if item.Weight != tt.want[i] {
					t.Errorf("weight[%d] = %v, want %v", i, item.Weight, tt.want[i])
				}
				if item.Absolute != (i%2 == 0) {
					t.Errorf("item %d: absolute flag changed", i)
				}
				if item.Scale != vec(float64(i+1), 2, 3) {
					t.Errorf("item %d: scale changed to %v", i, item.Scale)
				}
			}
		})
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	items := List{{Weight: 0.3}, {Weight: -0.9}, {Weight: 0.7}, {Weight: 0.1}}
	Normalize(items)
	if sum := WeightSum(items); math.Abs(sum-1) > 1e-12 {
		t.Errorf("WeightSum() after Normalize = %v, want 1", sum)
	}
}

func TestNewContribution(t *testing.T) {
	c := NewContribution("driver")
	want := Contribution{Name: "driver", Weight: 1, Absolute: false, Scale: One}
	if c != want {
		t.Errorf("NewContribution() = %+v, want %+v", c, want)
	}
	if c.IsSkipped() {
		t.Error("default contribution should not be skipped")
	}
	c.Weight = 0
	if !c.IsSkipped() {
		t.Error("zero-weight relative contribution should be skipped")
	}
	c.Absolute = true
	if c.IsSkipped() {
		t.Error("absolute contributions are never skipped")
	}
}

func TestClone(t *testing.T) {
	items := List{{Weight: 2}, {Weight: 2}}
	clone := items.Clone()
	Normalize(clone)
	if items[0].Weight != 2 {
		t.Errorf("Normalize on clone changed original: %v", items[0].Weight)
	}
}
