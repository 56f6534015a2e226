package domain

import "testing"

func mustSpace(t *testing.T, bits, r, k int) Space {
	t.Helper()
	sp, err := NewSpace(bits, r, k)
	if err != nil {
		t.Fatalf("NewSpace(%d,%d,%d) failed: %v", bits, r, k, err)
	}
	return sp
}

func TestBetweenOpen(t *testing.T) {
	sp := mustSpace(t, 8, 4, 2)
	tests := []struct {
		name    string
		a, b, x uint64
		want    bool
	}{
		{"linear inside", 10, 20, 15, true},
		{"linear at a", 10, 20, 10, false},
		{"linear at b", 10, 20, 20, false},
		{"linear outside", 10, 20, 25, false},
		{"wrap inside high", 250, 5, 252, true},
		{"wrap inside low", 250, 5, 2, true},
		{"wrap at a", 250, 5, 250, false},
		{"wrap at b", 250, 5, 5, false},
		{"wrap outside", 250, 5, 100, false},
		{"a==b whole ring minus a", 42, 42, 43, true},
		{"a==b excludes a itself", 42, 42, 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sp.FromUint64(tt.a)
			b := sp.FromUint64(tt.b)
			x := sp.FromUint64(tt.x)
			if got := x.BetweenOpen(a, b); got != tt.want {
				t.Errorf("BetweenOpen(%d,(%d,%d)) = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBetweenRightClosed(t *testing.T) {
	sp := mustSpace(t, 8, 4, 2)
	tests := []struct {
		name    string
		a, b, x uint64
		want    bool
	}{
		{"linear inside", 10, 20, 15, true},
		{"linear at a excluded", 10, 20, 10, false},
		{"linear at b included", 10, 20, 20, true},
		{"wrap at b included", 250, 5, 5, true},
		{"wrap at a excluded", 250, 5, 250, false},
		{"wrap inside", 250, 5, 0, true},
		{"a==b whole ring", 42, 42, 200, true},
		{"a==b includes a", 42, 42, 42, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sp.FromUint64(tt.a)
			b := sp.FromUint64(tt.b)
			x := sp.FromUint64(tt.x)
			if got := x.BetweenRightClosed(a, b); got != tt.want {
				t.Errorf("BetweenRightClosed(%d,(%d,%d]) = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFingerStart(t *testing.T) {
	sp := mustSpace(t, 8, 4, 2)
	self := sp.FromUint64(10)
	tests := []struct {
		i    int
		want uint64
	}{
		{0, 11},
		{1, 12},
		{2, 14},
		{7, (10 + 128) % 256},
	}
	for _, tt := range tests {
		got, err := sp.FingerStart(self, tt.i)
		if err != nil {
			t.Fatalf("FingerStart(%d) error: %v", tt.i, err)
		}
		want := sp.FromUint64(tt.want)
		if !got.Equal(want) {
			t.Errorf("FingerStart(%d) = %s, want %s", tt.i, got, want)
		}
	}
}

func TestFromHexStringRejectsOverflow(t *testing.T) {
	sp := mustSpace(t, 12, 4, 2) // not byte-aligned
	if _, err := sp.FromHexString("0xfff"); err != nil {
		t.Fatalf("expected 0xfff to fit in 12 bits, got err: %v", err)
	}
	if _, err := sp.FromHexString("0x1000"); err == nil {
		t.Fatalf("expected 0x1000 to overflow a 12-bit space")
	}
}

func TestIsValidIDRejectsStrayBits(t *testing.T) {
	sp := mustSpace(t, 12, 4, 2)
	bad := ID{0xF0, 0x00} // top 4 bits of the first byte are outside 12 bits
	if err := sp.IsValidID(bad); err == nil {
		t.Fatalf("expected stray high bits to be rejected")
	}
}

func TestHashStringDeterministicAndInSpace(t *testing.T) {
	sp := mustSpace(t, 160, 4, 2)
	id1 := sp.HashString("127.0.0.1:9000")
	id2 := sp.HashString("127.0.0.1:9000")
	if !id1.Equal(id2) {
		t.Fatalf("HashString not deterministic")
	}
	if err := sp.IsValidID(id1); err != nil {
		t.Fatalf("hashed ID invalid: %v", err)
	}
}
