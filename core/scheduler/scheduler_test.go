package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "0 9 * * *"},
		{in: " 21:45 ", want: "45 21 * * *"},
		{in: "7:05", want: "5 7 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := DailySpec(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("DailySpec(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("DailySpec(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("DailySpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAddRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := New(time.UTC)
	noop := func(context.Context) error { return nil }
	if err := s.Add("notify", "0 9 * * *", noop); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add("notify", "0 10 * * *", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := s.Add("broken", "61 * * * *", noop); err == nil {
		t.Fatal("expected spec error")
	}
	if err := s.Add("nil", "@daily", nil); err == nil {
		t.Fatal("expected nil job error")
	}
}

func TestRunNowPassesJobContextAndRecovers(t *testing.T) {
	s := New(time.UTC)
	calls := 0
	if err := s.Add("ok", "@daily", func(ctx context.Context) error {
		calls++
		if ctx == nil {
			t.Fatal("nil context")
		}
		return errors.New("reported, not fatal")
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add("panics", "@daily", func(context.Context) error { panic("boom") }); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.RunNow("ok"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if err := s.RunNow("panics"); err != nil {
		t.Fatalf("RunNow panics: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	if err := s.RunNow("missing"); err == nil {
		t.Fatal("expected unknown job error")
	}
}

func TestStartComputesNextRunInLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := New(loc)
	if err := s.Add("notify", "30 9 * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()
	next, ok := s.Next("notify")
	if !ok {
		t.Fatal("expected next run")
	}
	local := next.In(loc)
	if local.Hour() != 9 || local.Minute() != 30 {
		t.Fatalf("next run %s not at 09:30 CET", local)
	}
}
