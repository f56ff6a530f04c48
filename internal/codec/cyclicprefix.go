package codec

// addCyclicPrefixComplex prepends the last c samples of symbol to its
// own front. The complex profile's guard is c complex samples.
func addCyclicPrefixComplex(symbol []complex128, c int) []complex128 {
	n := len(symbol)
	out := make([]complex128, c+n)
	copy(out, symbol[n-c:])
	copy(out[c:], symbol)
	return out
}

// addCyclicPrefixReal prepends the last 2*c real samples of block to
// its own front. The real profile's guard is measured in the
// real-sample domain: C (the config's N-domain cyclic length) becomes
// 2*C real samples once the block has been Nyquist-modulated to twice
// the rate.
func addCyclicPrefixReal(block []float64, c int) []float64 {
	cReal := 2 * c
	n := len(block)
	out := make([]float64, cReal+n)
	copy(out, block[n-cReal:])
	copy(out[cReal:], block)
	return out
}
