package gradient

import (
	"math"

	"github.com/Carmen-Shannon/backdrop/common"
)

// Hash21 maps a 2D lattice point to a pseudo random value in [0, 1).
func Hash21(x, y float64) float64 {
	return common.Fract(math.Sin(x*127.1+y*311.7) * 43758.5453)
}

// ValueNoise is smoothly interpolated lattice noise in [0, 1].
func ValueNoise(x, y float64) float64 {
	ix, iy := math.Floor(x), math.Floor(y)
	fx, fy := x-ix, y-iy
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)

	a := Hash21(ix, iy)
	b := Hash21(ix+1, iy)
	c := Hash21(ix, iy+1)
	d := Hash21(ix+1, iy+1)
	return common.Lerp(common.Lerp(a, b, ux), common.Lerp(c, d, ux), uy)
}

// FBM sums four octaves of ValueNoise, normalized to [0, 1].
func FBM(x, y float64) float64 {
	var sum float64
	amp := 0.5
	for range 4 {
		sum += amp * ValueNoise(x, y)
		x = x*2.03 + 17
		y = y*2.03 + 9.2
		amp *= 0.5
	}
	return sum / 0.9375
}
