package fmindex

import "github.com/viniciusth/fmindex/internal/wavelet"

// occurrences answers Occ(c, i): the number of times code c appears in
// bwt[0:i). It also serves the BWT itself, so that the wavelet backend can
// drop the plain copy.
type occurrences interface {
	rank(c int32, i int) int
	symbol(i int) int32
	sizeInBytes() int
}

// sampledOccurrences stores the counts of every code at each multiple of
// step, row-major: checkpoints[b*k+c] counts c in bwt[0:b*step).
// A query adds a scan of at most step-1 symbols to the nearest checkpoint.
type sampledOccurrences struct {
	bwt         []int32
	k           int
	step        int
	checkpoints []int32
}

func newSampledOccurrences(bwt []int32, k, step int) *sampledOccurrences {
	n := len(bwt)
	rows := n/step + 1
	checkpoints := make([]int32, rows*k)
	counts := make([]int32, k)
	for i, c := range bwt {
		if i%step == 0 {
			copy(checkpoints[(i/step)*k:], counts)
		}
		counts[c]++
	}
	if n%step == 0 {
		copy(checkpoints[(n/step)*k:], counts)
	}
	return &sampledOccurrences{bwt: bwt, k: k, step: step, checkpoints: checkpoints}
}

func (o *sampledOccurrences) rank(c int32, i int) int {
	b := i / o.step
	count := int(o.checkpoints[b*o.k+int(c)])
	for j := b * o.step; j < i; j++ {
		if o.bwt[j] == c {
			count++
		}
	}
	return count
}

func (o *sampledOccurrences) symbol(i int) int32 {
	return o.bwt[i]
}

func (o *sampledOccurrences) sizeInBytes() int {
	return len(o.checkpoints) * 4
}

type waveletOccurrences struct {
	m *wavelet.Matrix
}

func newWaveletOccurrences(bwt []int32, k int) *waveletOccurrences {
	return &waveletOccurrences{m: wavelet.New(bwt, k)}
}

func (o *waveletOccurrences) rank(c int32, i int) int {
	return o.m.Rank(c, i)
}

func (o *waveletOccurrences) symbol(i int) int32 {
	return o.m.Access(i)
}

func (o *waveletOccurrences) sizeInBytes() int {
	return o.m.SizeInBytes()
}
