package codec

import "math"

// fft and ifft implement the spectral transform the codec runs each
// OFDM symbol through. The radix-2 Cooley-Tukey core is carried over
// from internal/modem/fft.go and generalised with a direct O(N^2) DFT
// fallback for N that isn't a power of two, instead of panicking.
//
// Convention: ifft scales by 1/N, fft does not.
func fft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)
	if n <= 1 {
		return out
	}
	if isPowerOfTwo(n) {
		bitReverse(out)
		fftIterative(out, false)
		return out
	}
	return directDFT(x, false)
}

func ifft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	if n <= 1 {
		copy(out, x)
		return out
	}
	if isPowerOfTwo(n) {
		copy(out, x)
		bitReverse(out)
		fftIterative(out, true)
	} else {
		out = directDFT(x, true)
	}
	scale := complex(1/float64(n), 0)
	for i := range out {
		out[i] *= scale
	}
	return out
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func fftIterative(x []complex128, inverse bool) {
	n := len(x)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		halfSize := size >> 1
		wn := complexExp(sign * 2 * math.Pi / float64(size))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for j := 0; j < halfSize; j++ {
				u := x[start+j]
				v := w * x[start+j+halfSize]
				x[start+j] = u + v
				x[start+j+halfSize] = u - v
				w *= wn
			}
		}
	}
}

func bitReverse(x []complex128) {
	n := len(x)
	bits := 0
	for tmp := n; tmp > 1; tmp >>= 1 {
		bits++
	}
	for i := 0; i < n; i++ {
		j := reverseBits(i, bits)
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
}

func reverseBits(x, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

// directDFT is the O(N^2) fallback for lengths that aren't powers of
// two.
func directDFT(x []complex128, inverse bool) []complex128 {
	n := len(x)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			angle := sign * 2 * math.Pi * float64(k) * float64(j) / float64(n)
			sum += x[j] * complexExp(angle)
		}
		out[k] = sum
	}
	return out
}

func complexExp(theta float64) complex128 {
	return complex(math.Cos(theta), math.Sin(theta))
}
