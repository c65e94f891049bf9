package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		version int
		in      string
		want    string
	}{
		{MarkdownV1, "plain text", "plain text"},
		{MarkdownV1, "snake_case *bold* [link] `code`", "snake\\_case \\*bold\\* \\[link] \\`code\\`"},
		{MarkdownV2, "1.5 - 2!", "1\\.5 \\- 2\\!"},
		{MarkdownV2, "a\\b", "a\\\\b"},
		{MarkdownV2, "2026-03-01 12:30, a/b; x<y", "2026\\-03\\-01 12:30, a/b; x<y"},
		{MarkdownV2, "_*[]()~`>#+-=|{}.!", "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("escape %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("v%d %q: got %q want %q", tc.version, tc.in, got, tc.want)
		}
	}
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error")
	}
}
