// Package params collects the tunable network-wide constants the rest
// of the module reads: anchor cadence, finality depth, OES cadence and
// epoch window, and the replication/parity bounds. It follows the
// teacher's params package convention of typed config structs plus
// package-level defaults (compare metrics.DefaultConfig).
package params

import "time"

// NetworkConfig bundles every cross-subsystem constant a node needs to
// agree on with its peers. The chain/network id is deliberately left as
// external configuration rather than a compiled-in literal (spec.md §9
// Open Question: "the spec does not bind the chain id").
type NetworkConfig struct {
	// ChainID distinguishes independent deployments of this protocol.
	// External configuration input, not hardcoded.
	ChainID uint64

	// AnchorInterval is the minimum wall-clock spacing between anchors.
	AnchorInterval time.Duration

	// FinalityDepth is the number of enclosing, strongly-seen anchors
	// required before an entry is final.
	FinalityDepth int

	// OESInterval is the number of anchors between OES evolutions.
	OESInterval uint64

	// OESEpochWindow (W) is the sliding acceptance window
	// [current-W, current] for oes_epoch at signature verification time.
	OESEpochWindow uint64

	// ReplicationFactorMin/Max bound the per-entry replication_factor.
	ReplicationFactorMin int
	ReplicationFactorMax int

	// ReplicationFactorDefault is used when a client does not specify one.
	ReplicationFactorDefault int

	// MaxParents is the hard ceiling on parents per entry.
	MaxParents int

	// MaxContentBytes is the hard ceiling on entry content size.
	MaxContentBytes int

	// ShardSize is the fixed erasure-coding shard size in bytes.
	ShardSize int

	// ByzantineFaultBound (f) is the assumed maximum number of faulty
	// validators out of the current validator set; quorums require 2f+1.
	ByzantineFaultBound int
}

// DefaultNetworkConfig mirrors the defaults named throughout spec.md.
var DefaultNetworkConfig = NetworkConfig{
	ChainID:                  0, // must be set by deployment configuration
	AnchorInterval:           4200 * time.Millisecond,
	FinalityDepth:            3,
	OESInterval:              100,
	OESEpochWindow:           10,
	ReplicationFactorMin:     3,
	ReplicationFactorMax:     10,
	ReplicationFactorDefault: 5,
	MaxParents:               256,
	MaxContentBytes:          10 * 1024 * 1024,
	ShardSize:                4 * 1024,
	ByzantineFaultBound:      1,
}

// RequiredQuorumWeight returns the minimum weight needed for a 2/3+1
// supermajority over totalWeight validators/voters, the threshold used
// by virtual voting's strongly-sees relation, anchor attestation, OES
// commitment agreement, and erasure co-signature.
func RequiredQuorumWeight(totalWeight uint64) uint64 {
	if totalWeight == 0 {
		return 1
	}
	return (2*totalWeight)/3 + 1
}

// ByzantineQuorum returns 2f+1 for the given fault bound f, the
// threshold explicitly named by OES commitment agreement (§4.5) and
// erasure co-signature (§4.7).
func ByzantineQuorum(f int) int {
	return 2*f + 1
}
