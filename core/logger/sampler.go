package logger

import (
	"strconv"
	"strings"
	"sync"
)

// eventSampler lets numerator out of every denominator debug records through,
// counted separately per event so a chatty event does not starve rare ones.
type eventSampler struct {
	mu          sync.Mutex
	numerator   int
	denominator int
	counters    map[string]int
}

func newEventSampler(numerator, denominator int) *eventSampler {
	s := &eventSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set configures the ratio and resets every counter. A zero ratio disables sampling.
func (s *eventSampler) Set(numerator, denominator int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int)
	if numerator <= 0 || denominator <= 0 {
		s.numerator, s.denominator = 0, 0
		return
	}
	s.numerator = min(numerator, denominator)
	s.denominator = denominator
}

// Allow reports whether the next record of event passes.
func (s *eventSampler) Allow(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.denominator <= 0 {
		return true
	}
	n := s.counters[event]%s.denominator + 1
	s.counters[event] = n
	return n <= s.numerator
}

// parseRatioSpec accepts "num/den" or a bare "den" meaning 1/den.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
