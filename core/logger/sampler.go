package logger

import (
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler lets the first n of every d debug events through.
type ratioSampler struct {
	ratio atomic.Uint64 // n<<32 | d; zero disables sampling
	seq   atomic.Uint64
}

func newRatioSampler(n, d int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(n, d)
	return s
}

// Set changes the ratio and restarts the sequence. Non-positive values let
// everything through.
func (s *ratioSampler) Set(n, d int) {
	if n <= 0 || d <= 0 || int64(d) > math.MaxUint32 {
		s.ratio.Store(0)
	} else {
		s.ratio.Store(uint64(min(n, d))<<32 | uint64(d))
	}
	s.seq.Store(0)
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	r := s.ratio.Load()
	if r == 0 {
		return true
	}
	n, d := r>>32, r&math.MaxUint32
	return (s.seq.Add(1)-1)%d < n
}

// parseRatioSpec reads "n/d" or "d" (meaning 1/d). Anything else disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil {
			return 0, 0
		}
		return n, d
	}
	d, err := strconv.Atoi(spec)
	if err != nil || d <= 0 {
		return 0, 0
	}
	return 1, d
}
