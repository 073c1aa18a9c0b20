package logger

import "testing"

func TestEventSamplerCountsPerEvent(t *testing.T) {
	s := newEventSampler(1, 3)
	var got []bool
	for range 4 {
		got = append(got, s.Allow("update.received"))
	}
	want := []bool{true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("allow #%d = %v, want %v", i, got[i], want[i])
		}
	}
	if !s.Allow("report.summary") {
		t.Fatalf("first record of another event must pass")
	}
}

func TestEventSamplerDisabled(t *testing.T) {
	s := newEventSampler(0, 0)
	for range 5 {
		if !s.Allow("x") {
			t.Fatalf("disabled sampler dropped a record")
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := map[string][2]int{
		"":      {0, 0},
		"1/10":  {1, 10},
		" 2/5 ": {2, 5},
		"20":    {1, 20},
		"0":     {0, 0},
		"a/b":   {0, 0},
		"junk":  {0, 0},
	}
	for spec, want := range cases {
		num, den := parseRatioSpec(spec)
		if num != want[0] || den != want[1] {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", spec, num, den, want[0], want[1])
		}
	}
}
