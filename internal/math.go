package internal

import (
	"github.com/go-gl/mathgl/mgl32"
)

// BlockCentre returns the centre of the block at the integer position passed.
func BlockCentre(pos [3]int32) mgl32.Vec3 {
	return mgl32.Vec3{float32(pos[0]) + 0.5, float32(pos[1]) + 0.5, float32(pos[2]) + 0.5}
}

// BlockVec returns the corner of the block at the integer position passed.
func BlockVec(pos [3]int32) mgl32.Vec3 {
	return mgl32.Vec3{float32(pos[0]), float32(pos[1]), float32(pos[2])}
}

// DistanceSquared returns the squared distance between a and b.
func DistanceSquared(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// WithinReach reports whether target lies within reach blocks of origin.
func WithinReach(origin, target mgl32.Vec3, reach float32) bool {
	return DistanceSquared(origin, target) <= reach*reach
}

// Side returns the position of the block adjacent to pos on the face passed.
func Side(pos [3]int32, face int32) [3]int32 {
	switch face {
	case 0:
		pos[1]--
	case 1:
		pos[1]++
	case 2:
		pos[2]--
	case 3:
		pos[2]++
	case 4:
		pos[0]--
	case 5:
		pos[0]++
	}
	return pos
}
