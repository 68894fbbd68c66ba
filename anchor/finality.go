package anchor

import (
	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/quorum"
)

// FinalityChecker determines whether an entry has accumulated enough
// strongly-seen, themselves-strongly-seen anchors to be final (spec.md
// §4.4). It reads the same Engine's anchor list and gossip history, plus
// an optional quorum.Pool for the explicit-attestation path used in thin
// networks.
type FinalityChecker struct {
	engine *Engine
	quorum *quorum.Pool // nil when this network relies on virtual voting alone
}

func NewFinalityChecker(engine *Engine, pool *quorum.Pool) *FinalityChecker {
	return &FinalityChecker{engine: engine, quorum: pool}
}

// IsFinal reports whether entryEventID (the gossip event that carries
// the entry) is final: strongly-seen by at least FinalityDepth anchors,
// each of which is itself strongly-seen by a supermajority of
// validators, via virtual voting or an explicit attestation certificate
// (spec.md §4.4, §4.9).
func (f *FinalityChecker) IsFinal(entryID, entryEventID common.Hash) bool {
	f.engine.mu.Lock()
	anchors := append([]Anchor(nil), f.engine.anchors...)
	history := f.engine.history
	validators := f.engine.validators
	f.engine.mu.Unlock()

	count := 0
	for _, a := range anchors {
		if a.EntryID == entryID {
			continue
		}
		if !history.StronglySees(a.EventID, entryEventID, validators) {
			continue
		}
		if f.anchorItselfSeen(a) {
			count++
		}
	}
	return count >= f.engine.config.FinalityDepth
}

// anchorItselfSeen reports whether anchor a is, in turn, strongly-seen by
// a supermajority of validators: either virtual voting on a's entry
// reaches consensus, or an explicit attestation quorum certificate
// exists for it (spec.md §4.4: "via virtual voting or via explicit
// attestation entries").
func (f *FinalityChecker) anchorItselfSeen(a Anchor) bool {
	if _, decided := f.engine.history.ConsensusVote(a.EntryID, f.engine.validators); decided {
		return true
	}
	if f.quorum == nil {
		return false
	}
	cert, ok := f.quorum.BuildCertificate(quorum.PurposeAnchorAttestation, a.EntryID)
	return ok && cert.Verify() == nil
}
