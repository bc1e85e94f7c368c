package approx

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Direction is one probe direction fed to the size-approximation LP's
// objective: a length-(dim-1) vector over the reduced simplex
// coordinates, per spec.md §4.6.
type Direction = []float64

// AxisDirections returns the 2*n signed unit vectors of the reduced
// n-dimensional space (n = d-1): e_1, -e_1, e_2, -e_2, ...
func AxisDirections(n int) []Direction {
	dirs := make([]Direction, 0, 2*n)
	for i := 0; i < n; i++ {
		pos := make([]float64, n)
		pos[i] = 1
		neg := make([]float64, n)
		neg[i] = -1
		dirs = append(dirs, pos, neg)
	}
	return dirs
}

// RandomDirections returns count uniform points on the reduced
// n-dimensional simplex (each with Σ<=1, every component >=0) plus
// their negations, 2*count directions total.
func RandomDirections(n, count int, rng *rand.Rand) []Direction {
	dirs := make([]Direction, 0, 2*count)
	for k := 0; k < count; k++ {
		p := uniformSimplexPoint(n, rng)
		neg := make([]float64, n)
		for i, v := range p {
			neg[i] = -v
		}
		dirs = append(dirs, p, neg)
	}
	return dirs
}

// uniformSimplexPoint draws a point uniformly from the n-dimensional
// reduced simplex {x >= 0, Σx <= 1} via the gaps between n sorted
// uniform cut points in [0,1] (n+1 components), keeping the first n.
func uniformSimplexPoint(n int, rng *rand.Rand) []float64 {
	cuts := make([]float64, n+2)
	cuts[0] = 0
	cuts[n+1] = 1
	for i := 1; i <= n; i++ {
		cuts[i] = rng.Float64()
	}
	sortFloats(cuts[1 : n+1])
	p := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = cuts[i+1] - cuts[i]
	}
	return p
}

func sortFloats(s []float64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// RotationDirections rotates, for every axis pair (i,j) of the reduced
// n-dimensional space, the point 0.5*e_i + 0.5*e_j by 360/steps degrees
// around the (i,j) plane, steps times, grounded on the original Rust's
// dir_iter/rotation_matrix.
func RotationDirections(n, steps int) []Direction {
	if steps <= 0 {
		return nil
	}
	angle := 360.0 / float64(steps)
	var dirs []Direction
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rot := rotationMatrix(n, i, j, angle)
			res := make([]float64, n)
			res[i] = 0.5
			res[j] = 0.5
			v := mat.NewVecDense(n, res)
			for k := 0; k < steps; k++ {
				var next mat.VecDense
				next.MulVec(rot, v)
				dirs = append(dirs, append([]float64(nil), next.RawVector().Data...))
				v = &next
			}
		}
	}
	return dirs
}

// rotationMatrix builds the n x n rotation matrix that rotates the
// (axis1, axis2) plane by angle degrees and leaves every other axis
// fixed, matching the original Rust's rotation_matrix.
func rotationMatrix(n, axis1, axis2 int, angleDeg float64) *mat.Dense {
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	data := make([]float64, n*n)
	res := mat.NewDense(n, n, data)
	for i := 0; i < n; i++ {
		if i == axis1 || i == axis2 {
			continue
		}
		res.Set(i, i, 1)
	}
	res.Set(axis1, axis1, cos)
	res.Set(axis2, axis2, cos)
	res.Set(axis1, axis2, -sin)
	res.Set(axis2, axis1, sin)
	return res
}
