package keyboard

import "testing"

func TestInlineButtonsRowsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "Fridge", Data: "-100:sb:Fridge"}},
		nil,
		[]InlineBtn{{Text: "Add", Data: "-100:ad:s"}, {Text: "Back", Data: "-100:bk:b"}},
	)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
	if got := m.InlineKeyboard[0][0].Data; got != "-100:sb:Fridge" {
		t.Fatalf("data = %q", got)
	}
	if len(m.InlineKeyboard[1]) != 2 {
		t.Fatalf("second row = %v", m.InlineKeyboard[1])
	}
}

func TestForceReply(t *testing.T) {
	if !ForceReply().ForceReply {
		t.Fatalf("ForceReply not set")
	}
}
