package peerid

import "testing"

func TestParseShort(t *testing.T) {
	id, err := Parse("0123456789ABCDEF")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Kind() != KindShort {
		t.Fatalf("expected KindShort, got %v", id.Kind())
	}
	if id.String() != "0123456789abcdef" {
		t.Fatalf("expected normalized lowercase, got %q", id.String())
	}
}

func TestParseFull(t *testing.T) {
	full := "ab"
	for len(full) < 64 {
		full += "cd"
	}
	full = full[:64]

	id, err := Parse(full)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Kind() != KindFull {
		t.Fatalf("expected KindFull, got %v", id.Kind())
	}
}

func TestParseOverlay(t *testing.T) {
	id, err := Parse("overlay:abcd1234")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id.Kind() != KindOverlay {
		t.Fatalf("expected KindOverlay, got %v", id.Kind())
	}
	if id.String() != "overlay:abcd1234" {
		t.Fatalf("unexpected String(): %q", id.String())
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{"", "xyz", "0123456789abcde", "overlay:", "0123456789abcdefg"}
	for _, c := range cases {
		if _, err := Parse(c); err != ErrInvalidPeerID {
			t.Fatalf("Parse(%q): expected ErrInvalidPeerID, got %v", c, err)
		}
	}
}

func TestEqual(t *testing.T) {
	a, _ := Parse("0123456789abcdef")
	b, _ := Parse("0123456789ABCDEF")
	if !a.Equal(b) {
		t.Fatalf("expected normalized ids to be equal")
	}

	c, _ := Parse("overlay:abc")
	if a.Equal(c) {
		t.Fatalf("different kinds must not be equal")
	}
}
