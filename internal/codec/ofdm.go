package codec

import "fmt"

// Codec composes the scrambler, QAM mapper, subcarrier assembler,
// IFFT/FFT and cyclic-prefix insertion into one OFDM symbol encoder
// and decoder. It is built once from a validated Config and reused
// for every call; it holds no mutable state of its own (transient
// per-call scratch only), so a single Codec is safe to share across
// goroutines as long as each caller brings its own Decoder.
type Codec struct {
	cfg *Config
}

// NewCodec wraps cfg in a Codec ready to encode and decode.
func NewCodec(cfg *Config) *Codec { return &Codec{cfg: cfg} }

// Config returns the Codec's configuration.
func (cd *Codec) Config() *Config { return cd.cfg }

// numSymbols is the number of QAM points one OFDM symbol carries.
func (cd *Codec) numSymbols() int {
	return (cd.cfg.nData * 8) / cd.cfg.mQAM
}

// Samples is the signal buffer type the façade trades in. Exactly one
// of Complex or Real is populated, matching the Codec's Config
// profile: complex baseband or real (Nyquist-modulated) samples.
type Samples struct {
	Complex []complex128
	Real    []float64
}

// IsReal reports whether s holds the real (Nyquist-modulated) signal
// format rather than complex baseband.
func (s Samples) IsReal() bool { return s.Real != nil }

// Len returns the sample count in the buffer's native domain.
func (s Samples) Len() int {
	if s.IsReal() {
		return len(s.Real)
	}
	return len(s.Complex)
}

func (s Samples) append(other Samples) Samples {
	if s.IsReal() || other.IsReal() {
		return Samples{Real: append(append([]float64{}, s.Real...), other.Real...)}
	}
	return Samples{Complex: append(append([]complex128{}, s.Complex...), other.Complex...)}
}

// frameLen returns N' (the native-domain FFT length: N complex, 2N
// real) and the native-domain cyclic prefix length.
func (cd *Codec) frameLen() (nPrime, cpLen int) {
	if cd.cfg.profile == ProfileLegacy {
		return 2 * cd.cfg.n, 2 * cd.cfg.cyclic
	}
	return cd.cfg.n, cd.cfg.cyclic
}

// SymbolSampleLen is the number of native-domain samples one framed
// symbol occupies: N'+cpLen, i.e. N+C complex samples or 2(N+C) real
// samples.
func (cd *Codec) SymbolSampleLen() int {
	nPrime, cp := cd.frameLen()
	return nPrime + cp
}

// Encode returns one framed OFDM symbol carrying data, in the codec's
// native sample domain. len(data) must equal cfg.nData.
func (cd *Codec) Encode(data []byte) (Samples, error) {
	if len(data) != cd.cfg.nData {
		return Samples{}, newErr(KindLengthMismatch,
			fmt.Sprintf("encode: got %d bytes, want %d", len(data), cd.cfg.nData), nil)
	}

	scr := cd.cfg.newScrambler()
	scrambled := scramble(scr, cd.cfg.seed, data)

	msbFirst := cd.cfg.profile == ProfileModern
	bits := bytesToBits(scrambled, msbFirst)

	legacyQPSK := cd.cfg.profile == ProfileLegacy && cd.cfg.mQAM == 2
	con := newConstellation(cd.cfg.mQAM, legacyQPSK)

	points := make([]complex128, cd.numSymbols())
	for i := range points {
		points[i] = con.Map(bits[i*cd.cfg.mQAM : (i+1)*cd.cfg.mQAM])
	}

	spectrum := cd.cfg.assembleSpectrum(points)
	timeDomain := ifft(spectrum)

	if cd.cfg.profile == ProfileLegacy {
		real := nyquistMod(timeDomain)
		framed := addCyclicPrefixReal(real, cd.cfg.cyclic)
		return Samples{Real: framed}, nil
	}
	framed := addCyclicPrefixComplex(timeDomain, cd.cfg.cyclic)
	return Samples{Complex: framed}, nil
}

// EncodeStream encodes data as consecutive OFDM symbols, concatenated
// in transmission order. If len(data) isn't a multiple of cfg.nData,
// the final symbol is zero-padded.
func (cd *Codec) EncodeStream(data []byte) (Samples, error) {
	n := cd.cfg.nData
	var out Samples
	for i := 0; i < len(data); i += n {
		end := i + n
		var chunk []byte
		if end <= len(data) {
			chunk = data[i:end]
		} else {
			chunk = make([]byte, n)
			copy(chunk, data[i:])
		}
		sym, err := cd.Encode(chunk)
		if err != nil {
			return Samples{}, err
		}
		if out.Complex == nil && out.Real == nil {
			out = sym
		} else {
			out = out.append(sym)
		}
	}
	return out, nil
}

// Decoder holds the receive-side cursor into a signal buffer and
// steps through its decode state machine: Idle -> initDecode ->
// Aligned -> decode* -> Aligned/Exhausted.
type Decoder struct {
	cd     *Codec
	buf    Samples
	cursor int
}

// InitDecode positions a Decoder at offset within buf.
func (cd *Codec) InitDecode(buf Samples, offset int) *Decoder {
	return &Decoder{cd: cd, buf: buf, cursor: offset}
}

// Exhausted reports whether the cursor has passed the end of the
// buffer, i.e. no further Decode call can succeed.
func (d *Decoder) Exhausted() bool {
	nPrime, cp := d.cd.frameLen()
	return d.cursor+cp+nPrime > d.buf.Len()
}

// Decode consumes one framed symbol starting at the cursor, advances
// the cursor by cpLen+N' samples, and returns the recovered bytes
// plus the pilot score used by the fine sync stage to pick the best
// candidate offset.
func (d *Decoder) Decode() ([]byte, float64, error) {
	data, score, consumed, err := d.cd.decodeAt(d.buf, d.cursor)
	if err != nil {
		return nil, 0, err
	}
	d.cursor += consumed
	return data, score, nil
}

// decodeAt decodes one framed symbol starting at offset without
// mutating any cursor; it is shared by Decoder.Decode and the
// coarse/fine sync search.
func (cd *Codec) decodeAt(buf Samples, offset int) (data []byte, pilotScore float64, consumed int, err error) {
	nPrime, cp := cd.frameLen()
	need := cp + nPrime
	if offset < 0 || offset+need > buf.Len() {
		return nil, 0, 0, newErr(KindLengthMismatch,
			fmt.Sprintf("decode: need %d samples at offset %d, have %d", need, offset, buf.Len()), nil)
	}

	var timeDomain []complex128
	if cd.cfg.profile == ProfileLegacy {
		body := buf.Real[offset+cp : offset+cp+nPrime]
		timeDomain = nyquistDemod(body)
	} else {
		timeDomain = buf.Complex[offset+cp : offset+cp+nPrime]
	}

	spectrum := fft(timeDomain)
	points, pilotImag := cd.cfg.disassembleSpectrum(spectrum, cd.numSymbols())
	pilotScore = pilotScoreFor(cd.cfg.profile, pilotImag)

	legacyQPSK := cd.cfg.profile == ProfileLegacy && cd.cfg.mQAM == 2
	con := newConstellation(cd.cfg.mQAM, legacyQPSK)

	bits := make([]bool, 0, len(points)*cd.cfg.mQAM)
	for _, p := range points {
		bits = append(bits, con.Demap(p)...)
	}

	msbFirst := cd.cfg.profile == ProfileModern
	scrambled := bitsToBytes(bits, msbFirst)

	scr := cd.cfg.newScrambler()
	data = scramble(scr, cd.cfg.seed, scrambled) // XOR is its own inverse

	return data, pilotScore, need, nil
}

// pilotScoreFor scores how well a candidate offset aligns pilot tones
// on the real axis: sum of squared pilot imaginary parts for the
// modern profile (preferred for differentiability/peak sharpness),
// sum of absolute values for the legacy profile (matching the
// reference implementation).
func pilotScoreFor(profile Profile, pilotImag []float64) float64 {
	var sum float64
	for _, v := range pilotImag {
		if profile == ProfileLegacy {
			sum += absf(v)
		} else {
			sum += v * v
		}
	}
	return sum
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
