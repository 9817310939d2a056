package wavelet

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveRank(values []int32, c int32, i int) int {
	count := 0
	for _, v := range values[:i] {
		if v == c {
			count++
		}
	}
	return count
}

func TestMatrixSmall(t *testing.T) {
	// "ipssm$pissii" coded over {$,i,m,p,s}
	values := []int32{1, 3, 4, 4, 2, 0, 3, 1, 4, 4, 1, 1}
	m := New(values, 5)
	require.Equal(t, len(values), m.Len())

	for i, v := range values {
		assert.Equal(t, v, m.Access(i), "access %d", i)
	}
	for c := int32(0); c < 5; c++ {
		for i := 0; i <= len(values); i++ {
			assert.Equal(t, naiveRank(values, c, i), m.Rank(c, i), "rank(%d, %d)", c, i)
		}
	}
}

func TestMatrixOutOfRange(t *testing.T) {
	m := New([]int32{0, 1, 1, 0}, 2)
	assert.Equal(t, 0, m.Rank(2, 4))
	assert.Equal(t, 0, m.Rank(-1, 4))
	assert.Equal(t, 2, m.Rank(1, 100))
	assert.Equal(t, 0, m.Rank(1, -3))
}

func TestMatrixSingleSymbol(t *testing.T) {
	values := make([]int32, 130)
	m := New(values, 1)
	assert.Equal(t, 130, m.Rank(0, 130))
	assert.Equal(t, 64, m.Rank(0, 64))
	assert.Equal(t, int32(0), m.Access(129))
}

func TestMatrixRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, tc := range []struct {
		n     int
		sigma int
	}{
		{1, 1},
		{63, 2},
		{64, 3},
		{65, 17},
		{1000, 256},
		{4096, 5},
	} {
		values := make([]int32, tc.n)
		for i := range values {
			values[i] = int32(r.Intn(tc.sigma))
		}
		m := New(values, tc.sigma)
		for i, v := range values {
			require.Equal(t, v, m.Access(i))
		}
		for q := 0; q < 200; q++ {
			c := int32(r.Intn(tc.sigma))
			i := r.Intn(tc.n + 1)
			require.Equal(t, naiveRank(values, c, i), m.Rank(c, i), "n=%d sigma=%d rank(%d, %d)", tc.n, tc.sigma, c, i)
		}
		assert.Equal(t, naiveRank(values, values[0], tc.n), m.Rank(values[0], tc.n))
		assert.Positive(t, m.SizeInBytes())
	}
}

func FuzzMatrixRank(f *testing.F) {
	f.Add([]byte("mississippi"))
	f.Add([]byte{0, 0, 0})
	f.Add([]byte{255, 1, 128})
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) == 0 {
			return
		}
		values := make([]int32, len(data))
		for i, b := range data {
			values[i] = int32(b)
		}
		m := New(values, 256)
		for i := 0; i <= len(values); i += 1 + len(values)/16 {
			for _, c := range []int32{values[0], values[len(values)-1]} {
				if got, want := m.Rank(c, i), naiveRank(values, c, i); got != want {
					t.Fatalf("rank(%d, %d) = %d, want %d", c, i, got, want)
				}
			}
		}
	})
}
