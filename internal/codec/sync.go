package codec

import "math"

// FindSymbolStart implements the two-stage synchroniser: a coarse
// cyclic-prefix autocorrelation over coarseRange candidate offsets,
// followed by a fine pilot-imaginary-minimisation search over
// fineRange offsets either side of the coarse peak.
//
// coarseRange <= 0 selects the default search window (3*N for the
// complex profile, 10*N native-domain samples for the real profile).
// fineRange <= 0 selects the default window (w=25).
//
// It returns the full coarse-correlation array, the fine pilot-score
// array, and the refined start offset o2.
func (cd *Codec) FindSymbolStart(buf Samples, coarseRange, fineRange int) (corr []float64, pilotScores []float64, offset int, err error) {
	nPrime, cp := cd.frameLen()

	if coarseRange <= 0 {
		if cd.cfg.profile == ProfileLegacy {
			coarseRange = 10 * cd.cfg.n
		} else {
			coarseRange = 3 * cd.cfg.n
		}
	}
	if fineRange <= 0 {
		fineRange = 25
	}

	maxOffset := buf.Len() - nPrime - cp
	if maxOffset < 0 {
		return nil, nil, 0, newErr(KindSyncFailed, "buffer shorter than one framed symbol", nil)
	}
	if coarseRange > maxOffset+1 {
		coarseRange = maxOffset + 1
	}

	corr = make([]float64, coarseRange)
	for i := 0; i < coarseRange; i++ {
		corr[i] = cd.coarseCorrelation(buf, i, nPrime, cp)
	}

	// A continuous (oversampled) front end would show a correlation
	// plateau several samples wide around the true boundary; at exact
	// sample resolution with no intervening channel the peak is a
	// single-sample spike, so the width gate is set to 1: every local
	// maximum passes it, and no plateau width is required.
	peaks := findPeaks(corr, nPrime, 1)
	if len(peaks) == 0 {
		return corr, nil, 0, newErr(KindSyncFailed, "no coarse autocorrelation peak found", nil)
	}
	o1 := peaks[0]

	pilotScores = make([]float64, 2*fineRange)
	bestIdx := 0
	bestVal := math.Inf(1)
	for k := -fineRange; k < fineRange; k++ {
		i := o1 + k
		slot := k + fineRange
		if i < 0 || i+cp+nPrime > buf.Len() {
			return corr, nil, 0, newErr(KindInsufficientSamples,
				"fine sync window extends past buffer bounds", nil)
		}
		_, score, _, derr := cd.decodeAt(buf, i)
		if derr != nil {
			return corr, nil, 0, newErr(KindInsufficientSamples, "fine sync decode failed", derr)
		}
		pilotScores[slot] = score
		if score < bestVal {
			bestVal = score
			bestIdx = slot
		}
	}

	o2 := o1 + (bestIdx - fineRange)
	return corr, pilotScores, o2, nil
}

// coarseCorrelation computes the correlation between the cyclic
// prefix at i and the symbol tail it was copied from, N' samples
// later. The complex path takes the real part of the conjugate
// product sum; the real path's product is already real (matching the
// reference implementation's plain dot product, which does not
// rectify the result before argmax-style peak picking).
func (cd *Codec) coarseCorrelation(buf Samples, i, nPrime, cp int) float64 {
	var sumRe float64
	if buf.IsReal() {
		for j := 0; j < cp; j++ {
			sumRe += buf.Real[i+j] * buf.Real[i+nPrime+j]
		}
		return sumRe
	}
	for j := 0; j < cp; j++ {
		a := buf.Complex[i+j]
		b := buf.Complex[i+nPrime+j]
		sumRe += real(a)*real(b) + imag(a)*imag(b)
	}
	return sumRe
}

// findPeaks returns the indices of local maxima in r, non-maximum
// suppressed to at least minDistance apart and each required to stay
// above half its own value for at least minWidth samples, sorted by
// index ascending so the caller can take the first peak's index.
func findPeaks(r []float64, minDistance, minWidth int) []int {
	type cand struct {
		idx int
		val float64
	}
	var candidates []cand
	for i := range r {
		if r[i] <= 0 {
			continue
		}
		if i > 0 && r[i-1] > r[i] {
			continue
		}
		if i < len(r)-1 && r[i+1] > r[i] {
			continue
		}
		if !peakIsWideEnough(r, i, minWidth) {
			continue
		}
		candidates = append(candidates, cand{i, r[i]})
	}

	// Non-maximum suppression: strongest first, reject anything within
	// minDistance of an already-accepted peak.
	accepted := make([]int, 0, len(candidates))
	used := make([]bool, len(candidates))
	for {
		bestJ := -1
		for j, c := range candidates {
			if used[j] {
				continue
			}
			if bestJ == -1 || c.val > candidates[bestJ].val {
				bestJ = j
			}
		}
		if bestJ == -1 {
			break
		}
		used[bestJ] = true
		tooClose := false
		for _, a := range accepted {
			if abs(candidates[bestJ].idx-a) < minDistance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			accepted = append(accepted, candidates[bestJ].idx)
		}
	}

	sortInts(accepted)
	return accepted
}

func peakIsWideEnough(r []float64, i, minWidth int) bool {
	half := r[i] / 2
	left := i
	for left > 0 && r[left-1] >= half {
		left--
	}
	right := i
	for right < len(r)-1 && r[right+1] >= half {
		right++
	}
	return right-left+1 >= minWidth
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
