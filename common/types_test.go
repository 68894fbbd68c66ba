package common

import "testing"

func TestHashHexRoundTrip(t *testing.T) {
	want := BytesToHash([]byte("the quick brown fox jumps 12345"))
	got, err := HexToHash(want.Hex())
	if err != nil {
		t.Fatalf("HexToHash: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %x want %x", got, want)
	}
}

func TestHexToHashRejectsWrongLength(t *testing.T) {
	if _, err := HexToHash("0xabcd"); err == nil {
		t.Fatal("expected error for short hash")
	}
}

func TestSortHashesTieBreak(t *testing.T) {
	a := Hash{0x02}
	b := Hash{0x01}
	c := Hash{0x03}
	hs := []Hash{a, b, c}
	SortHashes(hs)
	if hs[0] != b || hs[1] != a || hs[2] != c {
		t.Fatalf("unexpected order: %v", hs)
	}
}

func TestHashIsZero(t *testing.T) {
	var z Hash
	if !z.IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	nz := BytesToHash([]byte{1})
	if nz.IsZero() {
		t.Fatal("non-zero hash reported IsZero")
	}
}
