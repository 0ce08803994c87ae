package geometry

import (
	"math"
	"testing"
)

func vectorsClose(a, b Vector3) bool {
	return a.Distance(b) < 1e-9
}

func TestMatrix4Identity(t *testing.T) {
	v := NewVector3(1, 2, 3)
	if got := Identity().TransformPoint(v); got != v {
		t.Errorf("Identity failed: expected %v, got %v", v, got)
	}
}

func TestNewMatrix4RowMajor(t *testing.T) {
	m := NewMatrix4(
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	)

	expected := NewVector3(5, 6, 7)
	if got := m.Position(); got != expected {
		t.Errorf("Position failed: expected %v, got %v", expected, got)
	}
	if m.At(0, 3) != 5 {
		t.Errorf("At failed: expected 5, got %v", m.At(0, 3))
	}
}

func TestRotationAxis(t *testing.T) {
	m := RotationAxis(NewVector3(0, 0, 2), math.Pi/2)
	got := m.TransformPoint(NewVector3(1, 0, 0))

	expected := NewVector3(0, 1, 0)
	if !vectorsClose(got, expected) {
		t.Errorf("RotationAxis failed: expected %v, got %v", expected, got)
	}
}

func TestMatrix4Mul(t *testing.T) {
	translate := Translation(NewVector3(1, 0, 0))
	rotate := RotationAxis(NewVector3(0, 0, 1), math.Pi/2)

	// rotate first, then translate
	got := translate.Mul(rotate).TransformPoint(NewVector3(1, 0, 0))
	expected := NewVector3(1, 1, 0)
	if !vectorsClose(got, expected) {
		t.Errorf("Mul failed: expected %v, got %v", expected, got)
	}
}

func TestEulerRoundTrip(t *testing.T) {
	e := Euler{X: 0.3, Y: -0.4, Z: 1.1}
	got := RotationEuler(e).Euler()

	if math.Abs(got.X-e.X) > 1e-9 || math.Abs(got.Y-e.Y) > 1e-9 || math.Abs(got.Z-e.Z) > 1e-9 {
		t.Errorf("Euler round trip failed: expected %v, got %v", e, got)
	}
}

func TestEulerGimbalLock(t *testing.T) {
	got := RotationEuler(Euler{Y: math.Pi / 2}).Euler()
	if math.Abs(got.Y-math.Pi/2) > 1e-6 || got.Z != 0 {
		t.Errorf("Gimbal lock failed: got %v", got)
	}
}

func TestLookAt(t *testing.T) {
	m := LookAt(NewVector3(0, 0, 10), NewVector3(0, 0, 0), NewVector3(0, 1, 0))
	if m != Identity() {
		t.Errorf("LookAt along -Z should be identity, got %v", m)
	}

	m = LookAt(NewVector3(10, 0, 0), NewVector3(0, 0, 0), NewVector3(0, 1, 0))
	forward := m.TransformDirection(NewVector3(0, 0, -1))
	if !vectorsClose(forward, NewVector3(-1, 0, 0)) {
		t.Errorf("LookAt forward failed: got %v", forward)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translation(NewVector3(4, 5, 6))
	v := NewVector3(1, 0, 0)
	if got := m.TransformDirection(v); got != v {
		t.Errorf("TransformDirection failed: expected %v, got %v", v, got)
	}
}
