package hash

import (
	"encoding/hex"
	"testing"
)

func TestNewDefault(t *testing.T) {
	h := New()
	h.Write([]byte("abc"))

	got := hex.EncodeToString(h.Sum(nil))
	if got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("unexpected sum %q", got)
	}
}

func TestFingerprintFromHex(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"a9993e364706816aba3e25717850c26c9cd0d89d", true},
		{"a9993e364706816aba3e25717850c26c9cd0d89", false},
		{"z9993e364706816aba3e25717850c26c9cd0d89d", false},
		{"", false},
	}

	for _, tt := range tests {
		f, ok := FromHex(tt.in)
		if ok != tt.ok {
			t.Errorf("FromHex(%q): got ok=%v", tt.in, ok)
			continue
		}
		if ok && f.String() != tt.in {
			t.Errorf("FromHex(%q): round trip gave %q", tt.in, f.String())
		}
	}
}

func TestFingerprintZeroAndShort(t *testing.T) {
	if !ZeroFingerprint.IsZero() {
		t.Error("zero fingerprint is not zero")
	}

	f := MustFromHex("a9993e364706816aba3e25717850c26c9cd0d89d")
	if f.IsZero() {
		t.Error("non-zero fingerprint reported as zero")
	}
	if f.Short() != "a9993e3" {
		t.Errorf("unexpected short form %q", f.Short())
	}
}

func TestFingerprintShard(t *testing.T) {
	f := MustFromHex("ff0000000000000000000000000000000000000a")
	if got := f.Shard(16); got != 15 {
		t.Errorf("got shard %d, want 15", got)
	}
	if got := f.Shard(1); got != 0 {
		t.Errorf("got shard %d, want 0", got)
	}
}

func TestSort(t *testing.T) {
	a := []Fingerprint{
		MustFromHex("2222222222222222222222222222222222222222"),
		MustFromHex("1111111111111111111111111111111111111111"),
	}
	Sort(a)
	if a[0].String()[0] != '1' {
		t.Errorf("not sorted: %v", a)
	}
}
