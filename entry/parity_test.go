package entry

import (
	"bytes"
	"testing"
)

func TestParityCompanionEncodeDecodeRoundTrip(t *testing.T) {
	content := make([]byte, ShardSize*4+3)
	for i := range content {
		content[i] = byte(i * 7)
	}
	pc, err := BuildParityCompanion(content, 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	encoded := pc.Encode()
	decoded, err := DecodeParityCompanion(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.ContentHash != pc.ContentHash {
		t.Fatalf("content hash mismatch after round trip")
	}
	if len(decoded.DataShards) != len(pc.DataShards) || len(decoded.ParityShards) != len(pc.ParityShards) {
		t.Fatalf("shard counts mismatch after round trip")
	}
	for i := range pc.DataShards {
		if !bytes.Equal(decoded.DataShards[i], pc.DataShards[i]) {
			t.Fatalf("data shard %d mismatch after round trip", i)
		}
	}
}

func TestParityShardsFormula(t *testing.T) {
	cases := map[int]int{3: 1, 4: 1, 5: 2, 6: 2, 10: 4}
	for data, want := range cases {
		if got := ParityShards(data); got != want {
			t.Fatalf("ParityShards(%d) = %d, want %d", data, got, want)
		}
	}
}

func TestReconstructFailsWithInsufficientShards(t *testing.T) {
	content := make([]byte, ShardSize*5)
	for i := range content {
		content[i] = byte(i)
	}
	pc, err := BuildParityCompanion(content, 5)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	shards := make([][]byte, len(pc.DataShards)+len(pc.ParityShards))
	copy(shards, pc.DataShards)
	copy(shards[len(pc.DataShards):], pc.ParityShards)

	// ParityShards(5) = 2, so losing 3 of 5 data shards exceeds what
	// the 2 parity shards can recover.
	shards[0], shards[1], shards[2] = nil, nil, nil

	if _, err := pc.Reconstruct(shards, len(content)); err == nil {
		t.Fatalf("expected reconstruction to fail with insufficient shards")
	}
}

func TestReconstructDetectsContentHashMismatch(t *testing.T) {
	content := make([]byte, ShardSize*3)
	for i := range content {
		content[i] = byte(i)
	}
	pc, err := BuildParityCompanion(content, 4)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// Tamper with the recorded content hash so reconstruction can never
	// match it, even though the shards themselves are intact.
	pc.ContentHash[0] ^= 0xFF

	shards := make([][]byte, len(pc.DataShards)+len(pc.ParityShards))
	copy(shards, pc.DataShards)
	copy(shards[len(pc.DataShards):], pc.ParityShards)

	if _, err := pc.Reconstruct(shards, len(content)); err == nil {
		t.Fatalf("expected content hash mismatch to be detected")
	}
}
