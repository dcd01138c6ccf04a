package logic

import (
	"math/rand/v2"
	"sync"
)

// Rand is the uniform random source used by the demo generator.
// Float64 must return values in [0, 1).
type Rand interface {
	Float64() float64
}

// DemoConfig holds the target utilisation of each simulated input.
type DemoConfig struct {
	// ZoneTargets is the target on-rate of each zone (zone 1 first).
	ZoneTargets [NumZones]float64
	// ZoneVariation is the per-cycle jitter as a fraction of the zone target.
	ZoneVariation float64
	// BurnerTarget is the target on-rate of the burner.
	BurnerTarget float64
	// BurnerVariation is the per-cycle jitter as a fraction of the burner target.
	BurnerVariation float64
	// BoostZones is the number of active zones that enables the burner boost.
	BoostZones int
	// BoostProbability is the chance of turning an off burner on when boosted.
	BoostProbability float64
}

// DefaultDemoConfig returns zone N at N*10% ±20%, burner at 50% ±30%, and a
// 30% burner boost when three or more zones are calling.
func DefaultDemoConfig() DemoConfig {
	return DemoConfig{
		ZoneTargets:      [NumZones]float64{0.10, 0.20, 0.30, 0.40, 0.50, 0.60},
		ZoneVariation:    0.20,
		BurnerTarget:     0.50,
		BurnerVariation:  0.30,
		BoostZones:       3,
		BoostProbability: 0.30,
	}
}

// DemoGenerator produces synthetic burner and zone activity.
// It is safe for concurrent use: Reset is called from the control handler
// while Generate runs on the publisher.
type DemoGenerator struct {
	cfg DemoConfig

	// NewSeed returns a fresh non-zero seed. Defaults to a random seed.
	NewSeed func() uint32
	// NewRand builds the random source for a seed. Defaults to PCG.
	NewRand func(seed uint32) Rand
	// OnSeed, if set, is called whenever a new seed is drawn.
	OnSeed func(seed uint32)

	mu   sync.Mutex
	seed uint32 // 0 = uninitialised
	rng  Rand
}

// NewDemoGenerator creates a generator with the given configuration.
func NewDemoGenerator(cfg DemoConfig) *DemoGenerator {
	return &DemoGenerator{
		cfg:     cfg,
		NewSeed: randomSeed,
		NewRand: pcgRand,
	}
}

func randomSeed() uint32 {
	return rand.Uint32()
}

func pcgRand(seed uint32) Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s<<32|s))
}

// Reset forgets the current seed so the next Generate draws a new one.
func (g *DemoGenerator) Reset() {
	g.mu.Lock()
	g.seed = 0
	g.rng = nil
	g.mu.Unlock()
}

// Seed returns the current seed, or 0 if none has been drawn since the last Reset.
func (g *DemoGenerator) Seed() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seed
}

// Generate returns one simulated sample of the burner and zones.
func (g *DemoGenerator) Generate() (burner bool, zones [NumZones]bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rng := g.source()

	for i, target := range g.cfg.ZoneTargets {
		rate := adjustedRate(rng, target, g.cfg.ZoneVariation)
		zones[i] = rng.Float64() < rate
	}

	rate := adjustedRate(rng, g.cfg.BurnerTarget, g.cfg.BurnerVariation)
	burner = rng.Float64() < rate
	burner = g.boost(rng, burner, countActive(zones))

	return burner, zones
}

// source lazily seeds the random source. Caller holds g.mu.
func (g *DemoGenerator) source() Rand {
	if g.rng != nil {
		return g.rng
	}
	seed := g.NewSeed()
	for seed == 0 {
		seed = g.NewSeed()
	}
	g.seed = seed
	g.rng = g.NewRand(seed)
	if g.OnSeed != nil {
		g.OnSeed(seed)
	}
	return g.rng
}

// boost may turn an off burner on when enough zones are calling. It never
// turns the burner off.
func (g *DemoGenerator) boost(rng Rand, burner bool, active int) bool {
	if burner || active < g.cfg.BoostZones {
		return burner
	}
	return rng.Float64() < g.cfg.BoostProbability
}

// adjustedRate jitters target by up to ±variation*target and clamps to [0,1].
func adjustedRate(rng Rand, target, variation float64) float64 {
	delta := (rng.Float64()*2 - 1) * target * variation
	rate := target + delta
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
