package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindSymbolStartModernNoiseless(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	data := make([]byte, cfg.nData)
	for i := range data {
		data[i] = byte(i + 5)
	}

	sym, err := cd.Encode(data)
	require.NoError(t, err)

	const padding = 50
	buf := Samples{Complex: make([]complex128, padding+2*sym.Len())}
	copy(buf.Complex[padding:], sym.Complex)
	copy(buf.Complex[padding+sym.Len():], sym.Complex)

	corr, pilotScores, offset, err := cd.FindSymbolStart(buf, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, corr)
	require.NotEmpty(t, pilotScores)
	require.InDelta(t, padding, offset, 1, "symbol start within +-1 sample of the true prefix boundary")

	got, _, _, err := cd.decodeAt(buf, offset)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFindSymbolStartLegacyNoiseless(t *testing.T) {
	cfg, err := NewLegacy()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	data := make([]byte, cfg.nData)
	for i := range data {
		data[i] = byte(i)
	}

	sym, err := cd.Encode(data)
	require.NoError(t, err)

	const padding = 100
	buf := Samples{Real: make([]float64, padding+2*sym.Len())}
	copy(buf.Real[padding:], sym.Real)
	copy(buf.Real[padding+sym.Len():], sym.Real)

	_, _, offset, err := cd.FindSymbolStart(buf, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, padding, offset, 1)
}

func TestFindSymbolStartFailsOnEmptyBuffer(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	_, _, _, err = cd.FindSymbolStart(Samples{Complex: make([]complex128, 4)}, 0, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSyncFailed))
}

func TestFindSymbolStartInsufficientSamplesForFineStage(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	data := make([]byte, cfg.nData)
	sym, err := cd.Encode(data)
	require.NoError(t, err)

	// Exactly one symbol, no trailing margin: the fine search window
	// (default w=25) runs past the buffer end.
	buf := Samples{Complex: append([]complex128{}, sym.Complex...)}

	_, _, _, err = cd.FindSymbolStart(buf, 0, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInsufficientSamples) || errors.Is(err, ErrSyncFailed))
}
