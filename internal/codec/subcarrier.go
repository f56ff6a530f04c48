package codec

// assembleSpectrum places numSymbols QAM points and the configured
// pilot tones into a length-N spectrum. Any bin outside the active
// band is left zero. The explicit layout skips DC (k=0); the legacy
// walk is contiguous and writes DC like any other bin when DC falls
// inside its band.
func (c *Config) assembleSpectrum(points []complex128) []complex128 {
	spectrum := make([]complex128, c.n)
	if c.pilots.explicit() {
		c.assembleExplicit(spectrum, points)
	} else {
		c.assembleLegacy(spectrum, points)
	}
	return spectrum
}

// assembleLegacy walks bins k = kStart, kStart+1, ... (mod N),
// writing one data point per bin and inserting a pilot ahead of data
// point Distance/2-1 and then ahead of every Distance-th data point.
func (c *Config) assembleLegacy(spectrum []complex128, points []complex128) {
	k := c.kStart
	pilotCountdown := c.pilots.Distance / 2
	pi := 0
	for pi < len(points) {
		pilotCountdown--
		if pilotCountdown == 0 {
			pilotCountdown = c.pilots.Distance
			spectrum[mod(k, c.n)] = complex(c.pilots.Amplitude, 0)
			k++
		}
		spectrum[mod(k, c.n)] = points[pi]
		pi++
		k++
	}
}

// assembleExplicit walks k = -kStart..-1 then k = 1..kStart (DC
// skipped), writing the next pilot when k matches a configured pilot
// index, else the next data point.
func (c *Config) assembleExplicit(spectrum []complex128, points []complex128) {
	pilotSet := newPilotSet(c.pilots.Indices)
	pi := 0
	for _, k := range explicitBinOrder(c.kStart) {
		if pilotSet.has(k) {
			spectrum[mod(k, c.n)] = complex(c.pilots.Amplitude, 0)
			continue
		}
		if pi < len(points) {
			spectrum[mod(k, c.n)] = points[pi]
			pi++
		}
	}
}

// disassembleSpectrum mirrors assembleSpectrum: it returns the data
// points in traversal order and the imaginary parts seen at each
// pilot bin (the latter feeds the fine sync stage).
func (c *Config) disassembleSpectrum(spectrum []complex128, numSymbols int) (points []complex128, pilotImag []float64) {
	if c.pilots.explicit() {
		return c.disassembleExplicit(spectrum, numSymbols)
	}
	return c.disassembleLegacy(spectrum, numSymbols)
}

func (c *Config) disassembleLegacy(spectrum []complex128, numSymbols int) ([]complex128, []float64) {
	points := make([]complex128, 0, numSymbols)
	var pilotImag []float64

	k := c.kStart
	pilotCountdown := c.pilots.Distance / 2
	for len(points) < numSymbols {
		pilotCountdown--
		if pilotCountdown == 0 {
			pilotCountdown = c.pilots.Distance
			pilotImag = append(pilotImag, imag(spectrum[mod(k, c.n)]))
			k++
		}
		points = append(points, spectrum[mod(k, c.n)])
		k++
	}
	return points, pilotImag
}

func (c *Config) disassembleExplicit(spectrum []complex128, numSymbols int) ([]complex128, []float64) {
	pilotSet := newPilotSet(c.pilots.Indices)
	points := make([]complex128, 0, numSymbols)
	var pilotImag []float64

	for _, k := range explicitBinOrder(c.kStart) {
		if pilotSet.has(k) {
			pilotImag = append(pilotImag, imag(spectrum[mod(k, c.n)]))
			continue
		}
		if len(points) < numSymbols {
			points = append(points, spectrum[mod(k, c.n)])
		}
	}
	return points, pilotImag
}

// explicitBinOrder returns the two-pass traversal order for the
// modern profile: negative frequencies first, then positive, DC
// skipped.
func explicitBinOrder(kStart int) []int {
	order := make([]int, 0, 2*kStart)
	for k := -kStart; k < 0; k++ {
		order = append(order, k)
	}
	for k := 1; k <= kStart; k++ {
		order = append(order, k)
	}
	return order
}

type pilotSet struct {
	m map[int]bool
}

func newPilotSet(idx []int) pilotSet {
	m := make(map[int]bool, len(idx))
	for _, i := range idx {
		m[i] = true
	}
	return pilotSet{m: m}
}

func (p pilotSet) has(k int) bool { return p.m[k] }

func mod(k, n int) int {
	k %= n
	if k < 0 {
		k += n
	}
	return k
}
