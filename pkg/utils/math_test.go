package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("got %v, want [0.6 0.8]", v)
	}
	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestL2Norm(t *testing.T) {
	if n := L2Norm([]float32{3, 4}); n != 5 {
		t.Errorf("L2Norm=%v, want 5", n)
	}
	if n := L2Norm(nil); n != 0 {
		t.Errorf("L2Norm(nil)=%v, want 0", n)
	}
}
