package keyboard

import "testing"

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{
		{Text: "a", Unique: "a"},
		{Text: "b", Unique: "b"},
		{Text: "c", Unique: "c"},
	}
	m := InlineButtonsNPerRow(btns, 2)
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[0]) != 2 || len(m.InlineKeyboard[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
	if m.InlineKeyboard[0][1].Unique != "b" {
		t.Fatalf("unique = %q", m.InlineKeyboard[0][1].Unique)
	}
}

func TestInlineURLButton(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "site", URL: "https://example.com"}},
		nil,
	)
	if len(m.InlineKeyboard) != 1 {
		t.Fatalf("empty rows must be skipped: %+v", m.InlineKeyboard)
	}
	if got := m.InlineKeyboard[0][0]; got.URL != "https://example.com" || got.Unique != "" {
		t.Fatalf("unexpected button: %+v", got)
	}
}
