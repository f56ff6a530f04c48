package codec

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFFTIFFTRoundTripPowerOfTwo(t *testing.T) {
	x := make([]complex128, 64)
	for i := range x {
		x[i] = complex(math.Sin(float64(i)), math.Cos(float64(i)*0.5))
	}

	spectrum := fft(x)
	back := ifft(spectrum)

	for i := range x {
		require.InDelta(t, real(x[i]), real(back[i]), 1e-9)
		require.InDelta(t, imag(x[i]), imag(back[i]), 1e-9)
	}
}

func TestFFTIFFTRoundTripNonPowerOfTwo(t *testing.T) {
	x := make([]complex128, 17)
	for i := range x {
		x[i] = complex(float64(i), float64(i)*-0.3)
	}

	spectrum := fft(x)
	back := ifft(spectrum)

	for i := range x {
		require.InDelta(t, real(x[i]), real(back[i]), 1e-9)
		require.InDelta(t, imag(x[i]), imag(back[i]), 1e-9)
	}
}

func TestFFTKnownImpulse(t *testing.T) {
	x := make([]complex128, 8)
	x[0] = 1
	spectrum := fft(x)
	for _, v := range spectrum {
		require.InDelta(t, 1.0, cmplx.Abs(v), 1e-9, "impulse has flat unit magnitude spectrum")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	require.True(t, isPowerOfTwo(1))
	require.True(t, isPowerOfTwo(64))
	require.False(t, isPowerOfTwo(0))
	require.False(t, isPowerOfTwo(17))
}
