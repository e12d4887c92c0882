package ovnuuid

import "testing"

func TestFromPartsRoundTrip(t *testing.T) {
	u := FromParts(42, 0xdeadbeef, 1, 2)
	if got := u.Part(0); got != 42 {
		t.Errorf("Part(0) = %d, want 42", got)
	}
	if got := u.Part(1); got != 0xdeadbeef {
		t.Errorf("Part(1) = %#x, want 0xdeadbeef", got)
	}
	if got := u.Part(2); got != 1 {
		t.Errorf("Part(2) = %d, want 1", got)
	}
	if got := u.Part(3); got != 2 {
		t.Errorf("Part(3) = %d, want 2", got)
	}
}

func TestParseAndString(t *testing.T) {
	const text = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	u, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := u.String(); got != text {
		t.Errorf("String() = %q, want %q", got, text)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatalf("Parse accepted invalid input")
	}
}

func TestNewIsRandomized(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatalf("New() returned identical UUIDs twice in a row")
	}
}

func TestPartPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Part(4) did not panic")
		}
	}()
	Nil.Part(4)
}
