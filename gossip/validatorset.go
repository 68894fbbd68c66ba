package gossip

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/strandnet/strand/common"
)

// ValidatorSet tracks participant membership for one gossip epoch. Gossip's
// supermajority computations (strongly-sees, round witnesses, consensus
// vote) are all defined over |V|, the validator count, rather than a
// weighted stake figure (spec.md §4.3) — weighted quorums live in the
// quorum package, used by anchor attestation, OES commitment and erasure
// co-signature instead. Membership itself is tracked with a set, the same
// way tos/peerset.go tracks connected peers.
type ValidatorSet struct {
	members mapset.Set
	order   []common.NodeID
}

func NewValidatorSet(members ...common.NodeID) *ValidatorSet {
	vs := &ValidatorSet{members: mapset.NewThreadUnsafeSet()}
	for _, m := range members {
		vs.Add(m)
	}
	return vs
}

func (vs *ValidatorSet) Add(id common.NodeID) {
	if vs.members.Add(id) {
		vs.order = append(vs.order, id)
	}
}

func (vs *ValidatorSet) Remove(id common.NodeID) {
	vs.members.Remove(id)
	for i, m := range vs.order {
		if m == id {
			vs.order = append(vs.order[:i], vs.order[i+1:]...)
			break
		}
	}
}

func (vs *ValidatorSet) Has(id common.NodeID) bool {
	return vs.members.Contains(id)
}

func (vs *ValidatorSet) Len() int {
	return vs.members.Cardinality()
}

// Members returns the validator ids in stable insertion order.
func (vs *ValidatorSet) Members() []common.NodeID {
	return append([]common.NodeID(nil), vs.order...)
}

// StrongMajorityThreshold is the smallest integer count strictly greater
// than 2|V|/3 (spec.md §4.3: "|W| > 2·|V|/3", and equivalently "round-r-1
// witnesses... ⌊2|V|/3⌋+1", the same value algebraically).
func (vs *ValidatorSet) StrongMajorityThreshold() int {
	n := vs.Len()
	return (2*n)/3 + 1
}
