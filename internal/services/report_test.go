package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClipSlicesByRunes(t *testing.T) {
	long := strings.Repeat("manutenção preventiva ", 10)
	out := clip(long, 25)
	if !utf8.ValidString(out) {
		t.Fatalf("clipped text is not valid UTF-8: %q", out)
	}
	if utf8.RuneCountInString(out) != 25 {
		t.Fatalf("rune count = %d, want 25", utf8.RuneCountInString(out))
	}
	if !strings.HasSuffix(out, "...") {
		t.Fatalf("missing ellipsis: %q", out)
	}

	if got := clip("Ocorrência", 60); got != "Ocorrência" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := clip("çãõé", 2); got != "çã" || !utf8.ValidString(got) {
		t.Fatalf("tiny clip = %q", got)
	}
}
