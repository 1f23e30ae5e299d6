package portfolio

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/bondfactor/bond"
)

// BarbellWeights solves for the market-value weights (w1, w2) that combine
// two legs with durations d1 and d2 into a target duration:
//
//	w1 + w2        = 1
//	w1*d1 + w2*d2  = target
//
// Weights fall outside [0, 1] when the target lies outside the legs'
// duration range; that is a valid levered allocation, not an error. Equal
// leg durations make the system singular.
func BarbellWeights(d1, d2, target float64) (w1, w2 float64, err error) {
	if d1 <= 0 || d2 <= 0 {
		return 0, 0, fmt.Errorf("BarbellWeights: leg durations must be positive, got %v and %v", d1, d2)
	}
	if d1 == d2 {
		return 0, 0, fmt.Errorf("BarbellWeights: legs have equal duration %v, system is singular", d1)
	}

	a := mat.NewDense(2, 2, []float64{
		1, 1,
		d1, d2,
	})
	b := mat.NewVecDense(2, []float64{1, target})

	var w mat.VecDense
	if err := w.SolveVec(a, b); err != nil {
		return 0, 0, fmt.Errorf("BarbellWeights: %w", err)
	}
	return w.AtVec(0), w.AtVec(1), nil
}

// BarbellInput names the two barbell legs and the bullet bond whose modified
// duration the barbell must match.
type BarbellInput struct {
	Short  *bond.Bond
	Long   *bond.Bond
	Bullet *bond.Bond
}

// BarbellResult reports the solved allocation and the convexity comparison.
// Levered is set when either weight falls outside [0, 1], meaning the bullet
// duration cannot be reached with long-only positions in the two legs.
type BarbellResult struct {
	ShortWeight      float64
	LongWeight       float64
	TargetDuration   float64
	BarbellConvexity float64
	BulletConvexity  float64
	ConvexityPickup  float64
	Levered          bool
}

// CompareBarbellBullet solves the barbell weights that match the bullet's
// modified duration and compares the blended convexity against the bullet's.
// For dispersed cash flows the barbell carries more convexity at equal
// duration, so ConvexityPickup is positive in the usual configuration.
func CompareBarbellBullet(in BarbellInput) (BarbellResult, error) {
	if in.Short == nil || in.Long == nil || in.Bullet == nil {
		return BarbellResult{}, fmt.Errorf("CompareBarbellBullet: short, long and bullet bonds are all required")
	}

	short, err := in.Short.Sensitivities()
	if err != nil {
		return BarbellResult{}, fmt.Errorf("CompareBarbellBullet: short leg: %w", err)
	}
	long, err := in.Long.Sensitivities()
	if err != nil {
		return BarbellResult{}, fmt.Errorf("CompareBarbellBullet: long leg: %w", err)
	}
	bullet, err := in.Bullet.Sensitivities()
	if err != nil {
		return BarbellResult{}, fmt.Errorf("CompareBarbellBullet: bullet: %w", err)
	}

	w1, w2, err := BarbellWeights(short.Modified, long.Modified, bullet.Modified)
	if err != nil {
		return BarbellResult{}, err
	}

	blended := w1*short.Convexity + w2*long.Convexity
	return BarbellResult{
		ShortWeight:      w1,
		LongWeight:       w2,
		TargetDuration:   bullet.Modified,
		BarbellConvexity: blended,
		BulletConvexity:  bullet.Convexity,
		ConvexityPickup:  blended - bullet.Convexity,
		Levered:          w1 < 0 || w1 > 1 || w2 < 0 || w2 > 1,
	}, nil
}
