package entry

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/reedsolomon"
	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
)

// ShardSize is the fixed shard size used for erasure coding (spec.md
// §4.2: "shard size fixed (e.g. 4 KiB)").
const ShardSize = 4 * 1024

// ParityShards returns the parity shard count for a given data shard
// count: floor((data-1)/2) (spec.md §4.6: "parity=⌊(ρ−1)/2⌋").
func ParityShards(dataShards int) int {
	return (dataShards - 1) / 2
}

// ParityCompanion is the erasure-coded sidecar of an entry, one-to-one
// with it, created on admission and destroyed only with the entry
// (spec.md §3, §4.2).
type ParityCompanion struct {
	DataShards   [][]byte
	ParityShards [][]byte
	ShardHashes  []common.Hash
	ContentHash  common.Hash
}

// BuildParityCompanion splits content into fixed-size data shards
// (zero-padding the final shard) and computes parity shards via
// Reed-Solomon, plus a cryptographic binding of each shard hash and
// the original content hash (spec.md §4.2).
func BuildParityCompanion(content []byte, dataShards int) (*ParityCompanion, error) {
	if dataShards < 3 || dataShards > 10 {
		return nil, fmt.Errorf("entry: data shard count must be in [3,10], got %d", dataShards)
	}
	parityCount := ParityShards(dataShards)

	shards := splitIntoShards(content, dataShards)
	parity := make([][]byte, parityCount)
	for i := range parity {
		parity[i] = make([]byte, ShardSize)
	}

	enc, err := reedsolomon.New(dataShards, parityCount)
	if err != nil {
		return nil, fmt.Errorf("entry: create reedsolomon encoder: %w", err)
	}
	all := append(append([][]byte(nil), shards...), parity...)
	if err := enc.Encode(all); err != nil {
		return nil, fmt.Errorf("entry: reedsolomon encode: %w", err)
	}

	hashes := make([]common.Hash, 0, dataShards+parityCount)
	for _, s := range all {
		hashes = append(hashes, crypto.Hash(crypto.DomainShard, s))
	}

	return &ParityCompanion{
		DataShards:   shards,
		ParityShards: parity,
		ShardHashes:  hashes,
		ContentHash:  crypto.Hash(crypto.DomainEntry, content),
	}, nil
}

// splitIntoShards divides content into ShardSize-byte shards,
// zero-padding the final one.
func splitIntoShards(content []byte, dataShards int) [][]byte {
	shards := make([][]byte, dataShards)
	for i := range shards {
		shards[i] = make([]byte, ShardSize)
		start := i * ShardSize
		if start >= len(content) {
			continue
		}
		end := start + ShardSize
		if end > len(content) {
			end = len(content)
		}
		copy(shards[i], content[start:end])
	}
	return shards
}

// Reconstruct recovers the original content from however many shards
// of DataShards+ParityShards survive, provided at least DataShards
// count of them are present (nil entries mark losses). It verifies
// the recovered bytes hash back to ContentHash before returning them
// (spec.md §4.6 step 4).
func (pc *ParityCompanion) Reconstruct(shards [][]byte, originalLen int) ([]byte, error) {
	dataShards := len(pc.DataShards)
	parityShards := len(pc.ParityShards)

	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("entry: create reedsolomon encoder: %w", err)
	}

	present := 0
	for _, s := range shards {
		if s != nil {
			present++
		}
	}
	if present < dataShards {
		return nil, fmt.Errorf("entry: insufficient shards to reconstruct: have %d need %d", present, dataShards)
	}

	if err := enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("entry: reedsolomon reconstruct: %w", err)
	}

	var out []byte
	for _, s := range shards[:dataShards] {
		out = append(out, s...)
	}
	if originalLen >= 0 && originalLen <= len(out) {
		out = out[:originalLen]
	}
	if crypto.Hash(crypto.DomainEntry, out) != pc.ContentHash {
		return nil, fmt.Errorf("entry: reconstructed content hash mismatch")
	}
	return out, nil
}

// Encode serializes the parity companion for storage (spec.md §6:
// column "parity": id -> shard blob + shard hash set).
func (pc *ParityCompanion) Encode() []byte {
	buf := make([]byte, 0, 8+len(pc.DataShards)*ShardSize+len(pc.ParityShards)*ShardSize)
	buf = appendU32(buf, uint32(len(pc.DataShards)))
	buf = appendU32(buf, uint32(len(pc.ParityShards)))
	for _, s := range pc.DataShards {
		buf = appendU32Prefixed(buf, s)
	}
	for _, s := range pc.ParityShards {
		buf = appendU32Prefixed(buf, s)
	}
	buf = append(buf, pc.ContentHash.Bytes()...)
	for _, h := range pc.ShardHashes {
		buf = append(buf, h.Bytes()...)
	}
	return buf
}

// DecodeParityCompanion is the inverse of Encode.
func DecodeParityCompanion(b []byte) (*ParityCompanion, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("entry: truncated parity companion")
	}
	dataCount := binary.BigEndian.Uint32(b[0:4])
	parityCount := binary.BigEndian.Uint32(b[4:8])
	off := 8

	readShard := func() ([]byte, error) {
		if off+4 > len(b) {
			return nil, fmt.Errorf("entry: truncated parity companion")
		}
		n := binary.BigEndian.Uint32(b[off : off+4])
		off += 4
		if off+int(n) > len(b) {
			return nil, fmt.Errorf("entry: truncated parity companion")
		}
		s := b[off : off+int(n)]
		off += int(n)
		return s, nil
	}

	data := make([][]byte, dataCount)
	for i := range data {
		s, err := readShard()
		if err != nil {
			return nil, err
		}
		data[i] = s
	}
	parity := make([][]byte, parityCount)
	for i := range parity {
		s, err := readShard()
		if err != nil {
			return nil, err
		}
		parity[i] = s
	}
	if off+common.HashLength > len(b) {
		return nil, fmt.Errorf("entry: truncated parity companion")
	}
	contentHash := common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength

	hashes := make([]common.Hash, 0, dataCount+parityCount)
	for i := 0; i < int(dataCount+parityCount); i++ {
		if off+common.HashLength > len(b) {
			return nil, fmt.Errorf("entry: truncated parity companion")
		}
		hashes = append(hashes, common.BytesToHash(b[off:off+common.HashLength]))
		off += common.HashLength
	}

	return &ParityCompanion{
		DataShards:   data,
		ParityShards: parity,
		ShardHashes:  hashes,
		ContentHash:  contentHash,
	}, nil
}
