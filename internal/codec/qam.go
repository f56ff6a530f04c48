package codec

import "math"

// constellation holds the mQAM-point square constellation for one
// Config. Points are indexed by the m-bit Gray-coded symbol they
// represent; axis values are ungrayed on construction so Map/Demap
// only ever do array lookups and nearest-point search.
type constellation struct {
	mQAM   int
	legacy bool // unnormalised +-1 QPSK points, per the legacy profile
	points []complex128
}

func newConstellation(mQAM int, legacyQPSK bool) *constellation {
	q := &constellation{mQAM: mQAM, legacy: legacyQPSK}
	if legacyQPSK && mQAM == 2 {
		// Legacy profile: bit value 1 -> +1, 0 -> -1 on each axis,
		// unnormalised.
		q.points = []complex128{
			complex(-1, -1), // 00
			complex(-1, 1),  // 01
			complex(1, -1),  // 10
			complex(1, 1),   // 11
		}
		return q
	}

	order := 1 << (mQAM / 2) // levels per axis, sqrt(M)
	sigma := qamNormalization(mQAM)

	q.points = make([]complex128, 1<<mQAM)
	bitsPerAxis := mQAM / 2
	for idx := range q.points {
		row := idx >> bitsPerAxis
		col := idx & (order - 1)
		gi := grayToBinary(row)
		gj := grayToBinary(col)
		re := float64(2*gj-order+1) * sigma
		im := float64(2*gi-order+1) * sigma
		q.points[idx] = complex(re, im)
	}
	return q
}

// qamNormalization returns sigma such that the resulting square
// M-QAM constellation (M=2^m) has unit average symbol energy. The
// per-axis PAM levels are the odd integers 1, 3, ..., 2^(m/2)-1;
// sigma = sqrt(2^(m/2-2) / sum(i^2)).
func qamNormalization(mQAM int) float64 {
	order := 1 << (mQAM / 2)
	var sumSq float64
	for i := 1; i < order; i += 2 {
		sumSq += float64(i * i)
	}
	return math.Sqrt(math.Pow(2, float64(mQAM)/2-2) / sumSq)
}

// grayToBinary undoes a Gray code so adjacent constellation points
// differ by exactly one bit.
func grayToBinary(g int) int {
	b := g
	for shift := 1; (g >> shift) != 0; shift++ {
		b ^= g >> shift
	}
	return b
}

// Map converts m bits (MSB-first within the group) to a constellation
// point.
func (q *constellation) Map(bits []bool) complex128 {
	idx := 0
	for _, b := range bits {
		idx <<= 1
		if b {
			idx |= 1
		}
	}
	return q.points[idx]
}

// Demap returns the m bits (MSB-first) of the constellation point
// nearest symbol: hard-decision nearest-point detection.
func (q *constellation) Demap(symbol complex128) []bool {
	best := 0
	bestDist := math.MaxFloat64
	for i, p := range q.points {
		d := cabs2(symbol - p)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	bits := make([]bool, q.mQAM)
	for i := q.mQAM - 1; i >= 0; i-- {
		bits[i] = best&1 == 1
		best >>= 1
	}
	return bits
}

func cabs2(c complex128) float64 {
	r, i := real(c), imag(c)
	return r*r + i*i
}

// bytesToBits unpacks a byte slice into individual bits. msbFirst
// selects the modern packed order (bit 7 first); the legacy profile
// unpacks LSB-first within each byte.
func bytesToBits(data []byte, msbFirst bool) []bool {
	bits := make([]bool, 0, len(data)*8)
	for _, b := range data {
		if msbFirst {
			for i := 7; i >= 0; i-- {
				bits = append(bits, (b>>uint(i))&1 == 1)
			}
		} else {
			for i := 0; i < 8; i++ {
				bits = append(bits, (b>>uint(i))&1 == 1)
			}
		}
	}
	return bits
}

// bitsToBytes is the inverse of bytesToBits. len(bits) must be a
// multiple of 8.
func bitsToBytes(bits []bool, msbFirst bool) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		group := bits[i*8 : i*8+8]
		if msbFirst {
			for _, bit := range group {
				b <<= 1
				if bit {
					b |= 1
				}
			}
		} else {
			for j := 7; j >= 0; j-- {
				b <<= 1
				if group[j] {
					b |= 1
				}
			}
		}
		out[i] = b
	}
	return out
}
