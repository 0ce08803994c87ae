package geometry

import "math"

// Matrix4 is a 4x4 affine transform stored column-major,
// element (row r, column c) lives at index c*4+r.
type Matrix4 [16]float64

// Euler holds rotation angles in radians, applied in X, Y, Z order
type Euler struct {
	X, Y, Z float64
}

// Identity returns the identity matrix
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// NewMatrix4 builds a matrix from its 16 elements given row by row
func NewMatrix4(n11, n12, n13, n14, n21, n22, n23, n24, n31, n32, n33, n34, n41, n42, n43, n44 float64) Matrix4 {
	return Matrix4{
		n11, n21, n31, n41,
		n12, n22, n32, n42,
		n13, n23, n33, n43,
		n14, n24, n34, n44,
	}
}

// At returns the element at row r and column c
func (m Matrix4) At(r, c int) float64 {
	return m[c*4+r]
}

// Translation returns a pure translation matrix
func Translation(v Vector3) Matrix4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a uniform scale matrix
func Scaling(s float64) Matrix4 {
	m := Identity()
	m[0], m[5], m[10] = s, s, s
	return m
}

// RotationAxis returns a rotation of angle radians around axis.
// The axis is normalized first.
func RotationAxis(axis Vector3, angle float64) Matrix4 {
	axis = axis.Normalize()
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	tx, ty := t*x, t*y

	return NewMatrix4(
		tx*x+c, tx*y-s*z, tx*z+s*y, 0,
		tx*y+s*z, ty*y+c, ty*z-s*x, 0,
		tx*z-s*y, ty*z+s*x, t*z*z+c, 0,
		0, 0, 0, 1,
	)
}

// RotationEuler returns the rotation matrix for an XYZ Euler rotation
func RotationEuler(e Euler) Matrix4 {
	a, b := math.Cos(e.X), math.Sin(e.X)
	c, d := math.Cos(e.Y), math.Sin(e.Y)
	ce, f := math.Cos(e.Z), math.Sin(e.Z)

	ae, af, be, bf := a*ce, a*f, b*ce, b*f

	m := Identity()
	m[0] = c * ce
	m[4] = -c * f
	m[8] = d

	m[1] = af + be*d
	m[5] = ae - bf*d
	m[9] = -b * c

	m[2] = bf - ae*d
	m[6] = be + af*d
	m[10] = a * c
	return m
}

// Euler extracts XYZ Euler angles from the rotation part of the matrix.
// The matrix must be unscaled.
func (m Matrix4) Euler() Euler {
	m11, m12, m13 := m[0], m[4], m[8]
	m22, m23 := m[5], m[9]
	m32, m33 := m[6], m[10]

	var e Euler
	e.Y = math.Asin(clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// LookAt returns the rotation that orients the local -Z axis of an object
// at eye towards target, keeping up as close to the local Y axis as possible.
func LookAt(eye, target, up Vector3) Matrix4 {
	z := eye.Sub(target)
	if z.Length() == 0 {
		z.Z = 1
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Length() == 0 {
		// up and z are parallel
		if math.Abs(up.Z) == 1 {
			z.X += 0.0001
		} else {
			z.Z += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := Identity()
	m[0], m[4], m[8] = x.X, y.X, z.X
	m[1], m[5], m[9] = x.Y, y.Y, z.Y
	m[2], m[6], m[10] = x.Z, y.Z, z.Z
	return m
}

// Mul returns m * other
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var out Matrix4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * other[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformPoint applies the full affine transform to a point
func (m Matrix4) TransformPoint(v Vector3) Vector3 {
	return Vector3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

// TransformDirection applies only the linear part of the transform
func (m Matrix4) TransformDirection(v Vector3) Vector3 {
	return Vector3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Position returns the translation column
func (m Matrix4) Position() Vector3 {
	return Vector3{X: m[12], Y: m[13], Z: m[14]}
}

// Float32 converts the matrix for encoders that store single precision
func (m Matrix4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
