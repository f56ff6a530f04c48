package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleDisassembleExplicitRoundTrip(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	n := (cfg.nData * 8) / cfg.mQAM
	points := make([]complex128, n)
	for i := range points {
		points[i] = complex(float64(i)+0.5, float64(-i)-0.5)
	}

	spectrum := cfg.assembleSpectrum(points)
	require.Len(t, spectrum, cfg.n)
	require.Equal(t, complex(0, 0), spectrum[0], "DC must stay empty")

	got, pilotImag := cfg.disassembleSpectrum(spectrum, n)
	require.Equal(t, points, got)
	require.Len(t, pilotImag, len(cfg.pilots.Indices))
	for _, v := range pilotImag {
		require.Equal(t, 0.0, v, "noiseless pilot bins carry zero imaginary part")
	}
}

func TestAssembleDisassembleLegacyRoundTrip(t *testing.T) {
	cfg, err := NewLegacy()
	require.NoError(t, err)

	n := (cfg.nData * 8) / cfg.mQAM
	points := make([]complex128, n)
	for i := range points {
		points[i] = complex(float64(i%3)-1, float64(i%5)-2)
	}

	spectrum := cfg.assembleSpectrum(points)
	got, pilotImag := cfg.disassembleSpectrum(spectrum, n)
	require.Equal(t, points, got)
	require.NotEmpty(t, pilotImag)
}

func TestExplicitBinOrderSkipsDC(t *testing.T) {
	order := explicitBinOrder(5)
	for _, k := range order {
		require.NotEqual(t, 0, k)
	}
	require.Len(t, order, 10)
}

func TestPilotSetHas(t *testing.T) {
	ps := newPilotSet([]int{-21, -7, 7, 21})
	require.True(t, ps.has(7))
	require.True(t, ps.has(-21))
	require.False(t, ps.has(0))
	require.False(t, ps.has(8))
}

func TestModWraps(t *testing.T) {
	require.Equal(t, 1, mod(-63, 64))
	require.Equal(t, 0, mod(64, 64))
	require.Equal(t, 5, mod(5, 64))
}
