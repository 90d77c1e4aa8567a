package helper

import "testing"

func TestHash8(t *testing.T) {
	a, b := Hash8("a@example.com"), Hash8("a@example.com")
	if a != b || len(a) != 16 {
		t.Fatalf("Hash8 unstable or wrong size: %q %q", a, b)
	}
	if Hash8("b@example.com") == a {
		t.Fatal("distinct inputs collided")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  John@Example.COM "); got != "john@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
