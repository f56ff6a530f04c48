package codec

import "fmt"

// Profile bundles the scrambler algorithm, bin-traversal algorithm,
// bitstream bit order and Nyquist-modulation default that must agree
// between a transmitter and a receiver.
type Profile int

const (
	// ProfileLegacy: distance-based pilots, LSB-first bitstream,
	// real-sample (Nyquist-modulated) signal path, MT19937-class
	// scrambler. Mirrors the berndporr/py_ofdm reference OFDM class.
	ProfileLegacy Profile = iota
	// ProfileModern: explicit pilot-index layout, MSB-first packed
	// bitstream, complex-baseband signal path (Nyquist modulation
	// bypassed by default), SplitMix64-class scrambler.
	ProfileModern
)

func (p Profile) String() string {
	if p == ProfileLegacy {
		return "legacy"
	}
	return "modern"
}

// PilotLayout describes where pilot tones sit in the spectrum.
// Exactly one of Distance or Indices must be set (see Config
// validation); the zero value is invalid on its own.
type PilotLayout struct {
	// Distance-based layout (legacy profile): one pilot ahead of every
	// Distance-th data bin (the first ahead of data bin Distance/2),
	// amplitude Amplitude. Distance must be >= 2 (a
	// Distance of 1 would make the pilot writer re-check its own
	// just-written bin, which the spec rules out).
	Distance int

	// Indices is an explicit set of signed bin offsets, negative below
	// DC, used by the modern profile. All pilots share Amplitude.
	Indices []int

	Amplitude float64
}

func (p PilotLayout) explicit() bool { return len(p.Indices) > 0 }

// Profile returns the Config's profile.
func (c *Config) Profile() Profile { return c.profile }

// Config is the immutable, validated description of one OFDM link.
// Build it once with New and reuse it for every Encode/Decode call;
// Config itself holds no mutable state.
type Config struct {
	profile Profile

	n     int // FFT length
	nData int // payload bytes per symbol
	mQAM  int // bits per QAM symbol

	cyclic         int     // C, in N-domain (pre-Nyquist) sample units
	cyclicFraction float64 // staged fraction, resolved against n in New

	pilots PilotLayout
	seed   uint64

	kStart int // derived: index of first active bin
}

// Option configures a Config under construction.
type Option func(*Config)

// WithProfile selects the named profile. Default ProfileModern.
func WithProfile(p Profile) Option { return func(c *Config) { c.profile = p } }

// WithFFTSize sets N, the subcarrier count.
func WithFFTSize(n int) Option { return func(c *Config) { c.n = n } }

// WithNData sets the payload bytes carried per OFDM symbol.
func WithNData(nData int) Option { return func(c *Config) { c.nData = nData } }

// WithQAM sets bits per QAM symbol (m). M = 2^m.
func WithQAM(m int) Option { return func(c *Config) { c.mQAM = m } }

// WithCyclicLen sets the absolute cyclic prefix length C, in the same
// (pre-Nyquist) sample units as N.
func WithCyclicLen(c int) Option { return func(cfg *Config) { cfg.cyclic = c } }

// WithCyclicFraction sets C = round(fraction * N). Evaluated in New
// after all options are applied, so it may be combined with
// WithFFTSize in any option order.
func WithCyclicFraction(fraction float64) Option {
	return func(c *Config) { c.cyclic = -1; c.cyclicFraction = fraction }
}

// WithDistancePilots configures the legacy distance-based pilot
// layout: one pilot per d data bins, amplitude a.
func WithDistancePilots(d int, a float64) Option {
	return func(c *Config) { c.pilots = PilotLayout{Distance: d, Amplitude: a} }
}

// WithExplicitPilots configures the modern explicit bin-index pilot
// layout. idx entries are signed, negative meaning below DC.
func WithExplicitPilots(idx []int, a float64) Option {
	cp := make([]int, len(idx))
	copy(cp, idx)
	return func(c *Config) { c.pilots = PilotLayout{Indices: cp, Amplitude: a} }
}

// WithSeed sets the scrambler seed. Default 1.
func WithSeed(seed uint64) Option { return func(c *Config) { c.seed = seed } }

// New builds and validates a Config. Defaults match the modern
// profile: N=64, m=2, pilots at {-21,-7,7,21} amplitude 1, cyclic
// fraction 0.25, nData=12, seed 1.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		profile: ProfileModern,
		n:       64,
		nData:   12,
		mQAM:    2,
		cyclic:  -1,
		pilots:  PilotLayout{Indices: []int{-21, -7, 7, 21}, Amplitude: 1},
		seed:    1,
	}
	c.cyclicFraction = 0.25

	for _, opt := range opts {
		opt(c)
	}

	if c.cyclic < 0 {
		c.cyclic = int(c.cyclicFraction*float64(c.n) + 0.5)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.kStart = c.deriveKStart()
	return c, nil
}

// NewLegacy builds a Config matching the legacy defaults: N=2048,
// pilot distance 16, amplitude 2, nData=256, C=N/4 (so the
// Nyquist-modulated real cyclic prefix is N/2 real samples), seed 1.
func NewLegacy(opts ...Option) (*Config, error) {
	base := []Option{
		WithProfile(ProfileLegacy),
		WithFFTSize(2048),
		WithDistancePilots(16, 2),
		WithNData(256),
		WithQAM(2),
		WithCyclicFraction(0.25),
		WithSeed(1),
	}
	return New(append(base, opts...)...)
}

func (c *Config) validate() error {
	if c.n <= 0 {
		return newErr(KindConfigInvalid, fmt.Sprintf("N must be positive, got %d", c.n), nil)
	}
	if c.mQAM <= 0 || c.mQAM%2 != 0 {
		return newErr(KindConfigInvalid, fmt.Sprintf("mQAM must be a positive even integer, got %d", c.mQAM), nil)
	}
	if c.nData <= 0 {
		return newErr(KindConfigInvalid, fmt.Sprintf("nData must be positive, got %d", c.nData), nil)
	}
	if c.cyclic < 0 || c.cyclic >= c.n {
		return newErr(KindConfigInvalid, fmt.Sprintf("cyclic length %d out of range for N=%d", c.cyclic, c.n), nil)
	}

	bitsNeeded := c.nData * 8
	symbolsNeeded := bitsNeeded / c.mQAM
	if bitsNeeded%c.mQAM != 0 {
		return newErr(KindConfigInvalid, fmt.Sprintf("nData*8 (%d) is not a multiple of mQAM (%d)", bitsNeeded, c.mQAM), nil)
	}

	switch {
	case c.pilots.explicit():
		for _, idx := range c.pilots.Indices {
			if idx == 0 {
				return newErr(KindConfigInvalid, "pilot index 0 collides with DC", nil)
			}
			if abs(idx) >= c.n/2 {
				return newErr(KindConfigInvalid, fmt.Sprintf("pilot index %d out of range for N=%d", idx, c.n), nil)
			}
		}
	default:
		if c.pilots.Distance < 2 {
			return newErr(KindConfigInvalid, fmt.Sprintf("pilot distance must be >= 2, got %d", c.pilots.Distance), nil)
		}
	}

	activeBand := c.activeBandSize(symbolsNeeded)
	if activeBand > c.n {
		return newErr(KindConfigInvalid, fmt.Sprintf("nData=%d (needs %d active bins) does not fit in N=%d", c.nData, activeBand, c.n), nil)
	}

	return nil
}

// activeBandSize returns the number of active (data+pilot) bins this
// configuration occupies, used only for the fits-in-N validation
// check above.
func (c *Config) activeBandSize(symbolsNeeded int) int {
	if c.pilots.explicit() {
		return symbolsNeeded + len(c.pilots.Indices)
	}
	// Legacy: one pilot ahead of data point Distance/2-1, then one
	// ahead of every Distance-th data point after it (assembleLegacy).
	pilotSlots := 0
	if first := c.pilots.Distance / 2; symbolsNeeded >= first {
		pilotSlots = (symbolsNeeded-first)/c.pilots.Distance + 1
	}
	return symbolsNeeded + pilotSlots
}

// deriveKStart computes the index of the first active bin.
func (c *Config) deriveKStart() int {
	if c.pilots.explicit() {
		bitsNeeded := c.nData * 8
		symbolsNeeded := bitsNeeded / c.mQAM
		return (symbolsNeeded + len(c.pilots.Indices)) / 2
	}
	return c.n - c.n/(2*c.pilots.Distance) - 2*c.nData
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
