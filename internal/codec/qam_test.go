package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQAMNormalizationUnitEnergy(t *testing.T) {
	for _, m := range []int{2, 4, 6} {
		q := newConstellation(m, false)
		var total float64
		for _, p := range q.points {
			total += cabs2(p)
		}
		avg := total / float64(len(q.points))
		require.InDelta(t, 1.0, avg, 1e-9, "mQAM=%d average symbol energy", m)
	}
}

func TestLegacyQPSKIsUnnormalized(t *testing.T) {
	q := newConstellation(2, true)
	for _, p := range q.points {
		require.InDelta(t, 1.0, math.Abs(real(p)), 1e-12)
		require.InDelta(t, 1.0, math.Abs(imag(p)), 1e-12)
	}
}

func TestMapDemapRoundTrip(t *testing.T) {
	for _, m := range []int{2, 4, 6} {
		q := newConstellation(m, false)
		for idx := 0; idx < len(q.points); idx++ {
			bits := make([]bool, m)
			for i := m - 1; i >= 0; i-- {
				bits[i] = idx>>(m-1-i)&1 == 1
			}
			sym := q.Map(bits)
			got := q.Demap(sym)
			require.Equal(t, bits, got, "mQAM=%d idx=%d", m, idx)
		}
	}
}

func TestGrayToBinary(t *testing.T) {
	cases := map[int]int{
		0b000: 0b000,
		0b001: 0b001,
		0b011: 0b010,
		0b010: 0b011,
		0b110: 0b100,
	}
	for gray, want := range cases {
		require.Equal(t, want, grayToBinary(gray))
	}
}

func TestBytesToBitsRoundTrip(t *testing.T) {
	data := []byte{0x00, 0xFF, 0xA5, 0x01}
	for _, msbFirst := range []bool{true, false} {
		bits := bytesToBits(data, msbFirst)
		require.Len(t, bits, len(data)*8)
		back := bitsToBytes(bits, msbFirst)
		require.Equal(t, data, back)
	}
}

func TestBytesToBitsOrderDiffersByMode(t *testing.T) {
	data := []byte{0b10000011}
	msb := bytesToBits(data, true)
	lsb := bytesToBits(data, false)
	require.True(t, msb[0])
	require.True(t, lsb[0])
	require.NotEqual(t, msb[1], lsb[1])
}
