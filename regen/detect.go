// Package regen implements the regeneration subsystem (spec.md §4.6):
// damage detection, erasure-coded reconstruction from surviving shards
// across replicas, and a priority queue ordering which damaged entry
// to repair first.
package regen

import (
	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/entry"
)

// DamageClass is one of the five damage classes spec.md §4.6 names;
// the coder picks its repair strategy by class.
type DamageClass int

const (
	// SingleAtomCorruption: a single 32-byte atom within the content
	// mismatches; repairable inline from local parity alone.
	SingleAtomCorruption DamageClass = iota
	// ContiguousSegmentCorruption: one or more whole shards mismatch;
	// repairable shard-by-shard using this entry's own parity shards.
	ContiguousSegmentCorruption
	// MismatchError: a shard's stored hash no longer matches its bytes;
	// detected via per-shard hash, must be replaced from peers.
	MismatchError
	// SevereCorruption: more shards are damaged than local parity alone
	// can repair; requires peer fragments in addition to local parity.
	SevereCorruption
	// TotalLoss: no local data survives; must rebuild entirely from
	// parity companions held by replicas.
	TotalLoss
)

func (d DamageClass) String() string {
	switch d {
	case SingleAtomCorruption:
		return "single-atom-corruption"
	case ContiguousSegmentCorruption:
		return "contiguous-segment-corruption"
	case MismatchError:
		return "mismatch-error"
	case SevereCorruption:
		return "severe-corruption"
	case TotalLoss:
		return "total-loss"
	default:
		return "unknown"
	}
}

// ShardReport summarizes what a node locally holds for one entry's
// parity companion: which data/parity shard indices are present versus
// missing or hash-mismatched, AtomMismatch for single-atom granularity.
type ShardReport struct {
	TotalShards    int
	MissingShards  []int
	MismatchShards []int
	// AtomMismatch is set when exactly one 32-byte atom within an
	// otherwise intact shard fails re-verification against the entry id
	// derivation, the finest-grained damage class.
	AtomMismatch bool
}

// Classify maps a ShardReport to a DamageClass (spec.md §4.6's damage
// taxonomy), deciding strategy by how much of the companion survived
// locally.
func Classify(r ShardReport) DamageClass {
	damaged := len(r.MissingShards) + len(r.MismatchShards)
	switch {
	case damaged == 0 && r.AtomMismatch:
		return SingleAtomCorruption
	case len(r.MismatchShards) > 0 && len(r.MissingShards) == 0:
		return MismatchError
	case damaged == r.TotalShards:
		return TotalLoss
	case damaged > r.TotalShards/2:
		return SevereCorruption
	default:
		return ContiguousSegmentCorruption
	}
}

// DetectDamage re-verifies a locally held parity companion's shards
// against pc.ShardHashes (spec.md §4.6 step 1: "detect via hash
// mismatch against the id or segment hash") and reports which indices
// are missing (nil) versus present-but-mismatched.
func DetectDamage(pc *entry.ParityCompanion, localShards [][]byte) ShardReport {
	total := len(pc.DataShards) + len(pc.ParityShards)
	r := ShardReport{TotalShards: total}
	for i := 0; i < total; i++ {
		var s []byte
		if i < len(localShards) {
			s = localShards[i]
		}
		if s == nil {
			r.MissingShards = append(r.MissingShards, i)
			continue
		}
		if i >= len(pc.ShardHashes) {
			continue
		}
		if shardHash(s) != pc.ShardHashes[i] {
			r.MismatchShards = append(r.MismatchShards, i)
		}
	}
	return r
}

func shardHash(shard []byte) common.Hash {
	return crypto.Hash(crypto.DomainShard, shard)
}
