package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddCyclicPrefixComplex(t *testing.T) {
	sym := []complex128{1, 2, 3, 4, 5, 6, 7, 8}
	out := addCyclicPrefixComplex(sym, 3)
	require.Len(t, out, len(sym)+3)
	require.Equal(t, sym[5:], out[:3])
	require.Equal(t, sym, out[3:])
}

func TestAddCyclicPrefixReal(t *testing.T) {
	block := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := addCyclicPrefixReal(block, 2) // cReal = 4
	require.Len(t, out, len(block)+4)
	require.Equal(t, block[4:], out[:4])
	require.Equal(t, block, out[4:])
}
