package callbacks

import (
	"errors"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestJoinSplit(t *testing.T) {
	data, err := Join("-1001", "it", "l@c@Fridge@Milk")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if data != "-1001:it:l@c@Fridge@Milk" {
		t.Fatalf("unexpected data %q", data)
	}
	scope, key, payload, err := Split(data)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if scope != "-1001" || key != "it" || payload != "l@c@Fridge@Milk" {
		t.Fatalf("unexpected parts %q %q %q", scope, key, payload)
	}
}

func TestJoinRejectsOversize(t *testing.T) {
	_, err := Join("1", "k", strings.Repeat("x", MaxDataLen))
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if _, err := Join("a:b", "k", ""); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestSplitMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "a:b", ":k:p", "a::p"} {
		if _, _, _, err := Split(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb      *tele.Callback
		key     string
		payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Unique: "menu", Data: "1"}, "menu", "1"},
		{&tele.Callback{Data: "\fmenu|2"}, "menu", "2"},
		{&tele.Callback{Data: "42:sb:@@Fridge@"}, "sb", "@@Fridge@"},
		{&tele.Callback{Data: "garbage"}, "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(tc.cb)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("ParseCallbackData(%+v) = %q %q, want %q %q", tc.cb, key, payload, tc.key, tc.payload)
		}
	}
}
