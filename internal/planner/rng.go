package planner

// lcg is a small linear congruential generator used for the sampling
// planner's random points. It avoids a dependency on math/rand's global
// state so planning calls are reproducible given a fixed seed.
type lcg struct {
	state uint64
}

func newLCG(seed uint64) *lcg {
	if seed == 0 {
		seed = 1
	}
	return &lcg{state: seed}
}

// Next returns a value in [0, 1), using Knuth's MMIX 64-bit LCG
// constants.
func (g *lcg) Next() float64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return float64(g.state>>11) / float64(1<<53)
}
