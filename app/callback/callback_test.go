package callback

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeButtons(t *testing.T) {
	buttons := []Button{
		{Pod: "-1001234567890", Kind: KindStorage, Storage: "Fridge"},
		{Pod: "42", Kind: KindAdd, Target: AddStorage},
		{Pod: "42", Kind: KindAdd, Target: AddItem, Storage: "Fridge"},
		{Pod: "42", Kind: KindModifyItem, Storage: "Fridge", Item: "Milk"},
		{Pod: "42", Kind: KindDelete, Target: DeleteExpired, Storage: "Fridge"},
		{Pod: "42", Kind: KindDelete, Target: DeleteItem, Origin: OriginCheck, Storage: "Fridge", Item: "Milk"},
		{Pod: "42", Kind: KindBack, Target: BackBot},
		{Pod: "42", Kind: KindBack, Target: BackItem, Origin: OriginExpired, Storage: "Fridge", Item: "Milk"},
		{Pod: "42", Kind: KindItem, Origin: OriginList, Storage: "Fridge", Item: "Milk"},
		{Pod: "42", Kind: KindItemCheck, Target: CheckList},
		{Pod: "42", Kind: KindNoop},
	}
	for _, b := range buttons {
		data, err := Encode(b)
		if err != nil {
			t.Fatalf("encode %+v: %v", b, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		if got != b {
			t.Fatalf("decode %q = %+v, want %+v", data, got, b)
		}
	}
}

func TestEncodeWireForm(t *testing.T) {
	data, err := Encode(Button{Pod: "42", Kind: KindItem, Origin: OriginExpired, Storage: "Fridge", Item: "Milk"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if data != "42:it:@e@Fridge@Milk" {
		t.Fatalf("unexpected wire form %q", data)
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	cases := []Button{
		{Kind: KindNoop},
		{Pod: "42", Kind: "zz"},
		{Pod: "42", Kind: KindAdd},
		{Pod: "42", Kind: KindStorage},
		{Pod: "42", Kind: KindItem, Storage: "Fridge", Item: "Milk"},
		{Pod: "42", Kind: KindStorage, Storage: "a@b"},
		{Pod: "42", Kind: KindStorage, Storage: "a:b"},
		{Pod: "42", Kind: KindBack, Target: "x"},
		{Pod: "42", Kind: KindItem, Origin: "x", Storage: "F", Item: "M"},
	}
	for _, b := range cases {
		if _, err := Encode(b); !errors.Is(err, ErrInvalid) {
			t.Fatalf("encode %+v: expected ErrInvalid, got %v", b, err)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "42", "42:sb", "42:sb:Fridge", "42:sb:@@@@", "42:zz:@@@", "42:sb:@@@"} {
		if _, err := Decode(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestFitsLongNames(t *testing.T) {
	pod := "-1001234567890"
	name := strings.Repeat("a", 20)
	if err := Fits(pod, name, name); err != nil {
		t.Fatalf("20 ASCII characters must fit: %v", err)
	}
	wide := strings.Repeat("я", 20)
	if err := Fits(pod, wide, wide); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong for wide names, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if KindItemCheck.String() != "item_check_button" {
		t.Fatalf("unexpected name %s", KindItemCheck)
	}
	if len(Kinds()) != len(kindNames) {
		t.Fatalf("Kinds and kindNames out of sync")
	}
}
