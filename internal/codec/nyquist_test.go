package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNyquistRoundTrip(t *testing.T) {
	cx := []complex128{
		complex(1, 2),
		complex(-3, 4),
		complex(0.5, -0.5),
		complex(-1, -1),
	}

	real := nyquistMod(cx)
	require.Len(t, real, 2*len(cx))

	back := nyquistDemod(real)
	require.Equal(t, cx, back)
}

func TestNyquistModAlternatesSign(t *testing.T) {
	cx := []complex128{complex(1, 1), complex(1, 1)}
	real := nyquistMod(cx)
	require.Equal(t, 1.0, real[0])
	require.Equal(t, 1.0, real[1])
	require.Equal(t, -1.0, real[2])
	require.Equal(t, -1.0, real[3])
}

func TestConfigNyquistMethodsDelegate(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cx := []complex128{complex(1, 0)}
	require.Equal(t, nyquistMod(cx), cfg.NyquistMod(cx))
	real := cfg.NyquistMod(cx)
	require.Equal(t, nyquistDemod(real), cfg.NyquistDemod(real))
}
