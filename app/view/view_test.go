package view

import (
	"strings"
	"testing"
	"time"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/inventory"
)

var today = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := inventory.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// encodeAll fails when any rendered button cannot be sent to Telegram.
func encodeAll(t *testing.T, s Screen) {
	t.Helper()
	for _, row := range s.Rows {
		for _, b := range row {
			if _, err := callback.Encode(b.Data); err != nil {
				t.Fatalf("button %q: %v", b.Text, err)
			}
		}
	}
}

func TestMarker(t *testing.T) {
	cases := []struct {
		qty    int
		expiry string
		want   string
	}{
		{0, "2024-05-01", MarkerUnset},
		{0, "2099-01-01", MarkerUnset},
		{1, "2024-05-09", MarkerOverdue},
		{1, "2024-05-10", MarkerToday},
		{1, "2024-05-11", MarkerDueSoon},
		{1, "2024-05-12", MarkerDueSoon},
		{1, "2024-05-13", ""},
		{1, "2000-12-31", MarkerOverdue},
	}
	for _, tc := range cases {
		if got := Marker(tc.qty, day(tc.expiry), today); got != tc.want {
			t.Fatalf("Marker(%d, %s) = %q, want %q", tc.qty, tc.expiry, got, tc.want)
		}
	}
}

func TestDaysLabel(t *testing.T) {
	cases := map[int]string{3: "3 days ago", 1: "1 day ago", 0: "today", -1: "in 1 day", -2: "in 2 days"}
	for days, want := range cases {
		if got := DaysLabel(days); got != want {
			t.Fatalf("DaysLabel(%d) = %q, want %q", days, got, want)
		}
	}
}

func TestStorageListEmpty(t *testing.T) {
	s := StorageList("42", nil)
	if len(s.Rows) != 2 {
		t.Fatalf("expected placeholder and actions, got %d rows", len(s.Rows))
	}
	placeholder := s.Rows[0][0]
	if placeholder.Text != EmptyLabel || placeholder.Data.Kind != callback.KindNoop {
		t.Fatalf("unexpected placeholder %+v", placeholder)
	}
	last := s.Rows[1]
	if last[0].Data.Kind != callback.KindAdd || last[0].Data.Target != callback.AddStorage {
		t.Fatalf("expected Add storage first, got %+v", last[0])
	}
	if last[1].Data.Kind != callback.KindBack || last[1].Data.Target != callback.BackBot {
		t.Fatalf("expected Back to bot, got %+v", last[1])
	}
	encodeAll(t, s)
}

func TestStorageListOrder(t *testing.T) {
	s := StorageList("42", []string{"Fridge", "Pantry"})
	if s.Rows[0][0].Text != "Fridge" || s.Rows[1][0].Text != "Pantry" {
		t.Fatalf("storages out of order: %+v", s.Rows)
	}
	if s.Rows[0][0].Data.Storage != "Fridge" || s.Rows[0][0].Data.Kind != callback.KindStorage {
		t.Fatalf("unexpected storage button %+v", s.Rows[0][0].Data)
	}
	encodeAll(t, s)
}

func TestItemListLabels(t *testing.T) {
	items := []inventory.ItemDetail{
		{Storage: "Fridge", Name: "Milk", Quantity: 2, Expiry: day("2024-05-10")},
		{Storage: "Fridge", Name: "Jam", Quantity: 1, Expiry: day("2024-06-10")},
		{Storage: "Fridge", Name: "Eggs", Quantity: 0, Expiry: inventory.SentinelExpiry},
	}
	s := ItemList("42", "Fridge", items, today)
	want := []string{"Milk (2) " + MarkerToday, "Jam (1)", "Eggs (0) " + MarkerUnset}
	for i, w := range want {
		if got := s.Rows[i][0].Text; got != w {
			t.Fatalf("row %d = %q, want %q", i, got, w)
		}
		if s.Rows[i][0].Data.Origin != callback.OriginList {
			t.Fatalf("row %d must open the detail with list origin", i)
		}
	}
	if len(s.Rows) != len(items)+2 {
		t.Fatalf("expected two action rows, got %d rows", len(s.Rows))
	}
	if !strings.Contains(s.Text, "*Fridge*") {
		t.Fatalf("missing bold storage name in %q", s.Text)
	}
	encodeAll(t, s)
}

func TestItemListEscapesNames(t *testing.T) {
	s := ItemList("42", "my_fridge", nil, today)
	if !strings.Contains(s.Text, `*my*\_*fridge*`) {
		t.Fatalf("storage name not escaped: %q", s.Text)
	}
	if s.Rows[0][0].Text != EmptyLabel {
		t.Fatalf("expected placeholder for empty storage")
	}
}

func TestItemDetailBackTargets(t *testing.T) {
	d := inventory.ItemDetail{Storage: "Fridge", Name: "Milk", Quantity: 2, Expiry: day("2024-05-08")}
	cases := []struct {
		origin callback.Origin
		kind   callback.Kind
		target callback.Target
	}{
		{callback.OriginList, callback.KindBack, callback.BackItemList},
		{callback.OriginNone, callback.KindBack, callback.BackItemList},
		{callback.OriginExpired, callback.KindExpired, callback.TargetNone},
		{callback.OriginCheck, callback.KindItemCheck, callback.CheckList},
	}
	for _, tc := range cases {
		s := ItemDetail("42", d, tc.origin, today)
		back := s.Rows[len(s.Rows)-1][0].Data
		if back.Kind != tc.kind || back.Target != tc.target {
			t.Fatalf("origin %q: back = %+v", tc.origin, back)
		}
		encodeAll(t, s)
	}
	s := ItemDetail("42", d, callback.OriginList, today)
	if !strings.Contains(s.Text, "2024-05-08 (2 days ago)") {
		t.Fatalf("unexpected detail text %q", s.Text)
	}
}

func TestItemDetailUnsetExpiry(t *testing.T) {
	d := inventory.ItemDetail{Storage: "Fridge", Name: "Milk", Expiry: inventory.SentinelExpiry}
	s := ItemDetail("42", d, callback.OriginList, today)
	if !strings.Contains(s.Text, "Expiry: not set") {
		t.Fatalf("unexpected detail text %q", s.Text)
	}
}

func TestExpiredAndCheckLists(t *testing.T) {
	s := ExpiredList("42", "Fridge", []inventory.ExpiredItem{{Name: "Milk", DaysExpired: 3}})
	if s.Rows[0][0].Text != "Milk (3 days ago)" || s.Rows[0][0].Data.Origin != callback.OriginExpired {
		t.Fatalf("unexpected expired row %+v", s.Rows[0][0])
	}
	encodeAll(t, s)

	c := CheckList("42", []inventory.BadItem{{Name: "Jam", Storage: "Pantry", DaysExpired: -2}})
	if c.Rows[0][0].Text != "Jam @ Pantry (in 2 days)" {
		t.Fatalf("unexpected check row %q", c.Rows[0][0].Text)
	}
	if c.Rows[0][0].Data.Kind != callback.KindItemCheck || c.Rows[0][0].Data.Target != callback.CheckItem {
		t.Fatalf("unexpected check button %+v", c.Rows[0][0].Data)
	}
	encodeAll(t, c)

	if empty := CheckList("42", nil); empty.Rows[0][0].Text != EmptyLabel {
		t.Fatalf("expected placeholder in empty check list")
	}
}

func TestConfirmations(t *testing.T) {
	encodeAll(t, ConfirmDeleteStorage("42", "Fridge", 3))
	c := ConfirmDeleteItem("42", "Fridge", "Milk", callback.OriginCheck)
	back := c.Rows[0][1].Data
	if back.Target != callback.BackItem || back.Origin != callback.OriginCheck {
		t.Fatalf("item confirmation must return to the detail with its origin, got %+v", back)
	}
	encodeAll(t, c)
}

func TestPromptWithProblem(t *testing.T) {
	s := PromptQuantity("Fridge", "Milk", `"abc" is not a whole number`)
	if !strings.HasPrefix(s.Text, "❌ ") || len(s.Rows) != 0 {
		t.Fatalf("unexpected prompt %+v", s)
	}
	if n := (Screen{Text: "body"}).WithNotice("note"); n.Text != "note\n\nbody" {
		t.Fatalf("unexpected notice %q", n.Text)
	}
}
