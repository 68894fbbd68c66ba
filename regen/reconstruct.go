package regen

import (
	"context"
	"errors"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/entry"
	"github.com/strandnet/strand/protoerr"
)

// ShardSource fetches one shard of one entry's parity companion from a
// replica (spec.md §4.6 step 2: "contact up to replication_factor
// replicas for their shards").
type ShardSource interface {
	// FetchShard returns the bytes of shard index for entryID, or an
	// error if this source does not have it.
	FetchShard(ctx context.Context, entryID common.Hash, index int) ([]byte, error)
}

// ErrNoViableSourceCombination is returned once the first 1, 2, ...,
// replicationFactor sources have each been tried in turn without
// producing a companion that reconstructs to the stored content hash.
var ErrNoViableSourceCombination = errors.New("regen: no viable source combination")

// Reconstruct repairs entryID's content from pc (held locally, with
// shard indices in damaged marked as unusable) plus up to
// replicationFactor peer sources, trying sources in order and falling
// back to the next one whenever a fetched shard is itself bad (spec.md
// §4.6 steps 2-4): contact replicas, decode, verify, retry.
func Reconstruct(ctx context.Context, entryID common.Hash, pc *entry.ParityCompanion, localShards [][]byte, damaged []int, sources []ShardSource, replicationFactor int, originalLen int) ([]byte, error) {
	if replicationFactor > len(sources) {
		replicationFactor = len(sources)
	}

	damagedSet := make(map[int]bool, len(damaged))
	for _, i := range damaged {
		damagedSet[i] = true
	}

	working := append([][]byte(nil), localShards...)
	for i := range working {
		if damagedSet[i] {
			working[i] = nil
		}
	}

	// Try an increasing number of replicas, in order, until either a
	// combination reconstructs cleanly or every source is exhausted.
	for replicas := 1; replicas <= replicationFactor; replicas++ {
		attempt := append([][]byte(nil), working...)
		filled := fetchFromSources(ctx, entryID, attempt, sources[:replicas])
		if !filled {
			continue
		}
		content, err := pc.Reconstruct(attempt, originalLen)
		if err == nil {
			return content, nil
		}
	}
	return nil, ErrNoViableSourceCombination
}

// fetchFromSources fills missing slots of shards (nil entries) by
// asking each source in turn for whatever it holds, reporting whether
// any shard ended up present; whether there are enough is left to the
// reconstruction itself.
func fetchFromSources(ctx context.Context, entryID common.Hash, shards [][]byte, sources []ShardSource) bool {
	present := 0
	for _, s := range shards {
		if s != nil {
			present++
		}
	}
	for _, src := range sources {
		for i := range shards {
			if shards[i] != nil {
				continue
			}
			got, err := src.FetchShard(ctx, entryID, i)
			if err != nil || got == nil {
				continue
			}
			shards[i] = got
			present++
		}
	}
	return present > 0
}

// RegenerateTombstoned reports protoerr.ErrErased for any entry the
// local graph has already tombstoned, since spec.md §3's invariant
// forbids any reconstruction attempt from altering an erased entry's
// content.
func RegenerateTombstoned(g *entry.Graph, id common.Hash) error {
	if _, erased := g.IsTombstoned(id); erased {
		return protoerr.ErrErased
	}
	return nil
}
