package erasure

import (
	"sync"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/entry"
	"github.com/strandnet/strand/protoerr"
	"github.com/strandnet/strand/quorum"
)

// PolicyEngine is the external collaborator spec.md §1 names as out of
// scope for the core ("federation/community registries" and similar
// application-layer policy are external): it answers whether an
// authorizer is entitled to invoke a given reason against a target's
// current mutability class. The core only enforces the
// mutability-class/reason compatibility table in record.go directly;
// authorizer entitlement is this collaborator's call.
type PolicyEngine interface {
	AuthorizerEntitled(authorizer common.NodeID, reason Reason, target common.Hash) bool
}

// Handler drives the controlled-erasure protocol end to end against
// one Graph: policy check, quorum co-signature collection via
// quorum.Pool under quorum.PurposeErasureAuthorization, admission, and
// tombstone propagation. Grounded on entry/graph.go's Tombstone and on
// consensus/bft/vote_pool.go's equivocation-safe bookkeeping (an
// erasure co-signature, like a BFT vote, must never be double-counted
// per validator).
type Handler struct {
	mu sync.Mutex

	graph  *entry.Graph
	policy PolicyEngine
	pool   *quorum.Pool

	// erasedTargets remembers every id this Handler has applied an
	// erasure record to, so a re-seeded copy presenting the same id is
	// rejected outright (spec.md §4.7: "a node that later re-joins
	// ... and presents a regenerated copy of an erased target is
	// detected ... and the copy is rejected"). It is held in memory for
	// the Handler's lifetime only and is not persisted.
	erasedTargets map[common.Hash]bool
}

// NewHandler creates a Handler over graph, checking policy via policy
// and collecting co-signatures toward totalWeight's quorum threshold.
func NewHandler(graph *entry.Graph, policy PolicyEngine, totalWeight uint64) *Handler {
	return &Handler{
		graph:         graph,
		policy:        policy,
		pool:          quorum.NewPool(totalWeight),
		erasedTargets: make(map[common.Hash]bool),
	}
}

// CheckPolicy implements spec.md §4.7 step 2: the target's mutability
// class must permit the record's reason, and the policy engine must
// deem the authorizer entitled to invoke it.
func (h *Handler) CheckPolicy(target *entry.Entry, rec *Record) error {
	if !MutabilityPermits(target.Mutability, rec.Reason) {
		return protoerr.ErrUnauthorized
	}
	if h.policy != nil && !h.policy.AuthorizerEntitled(rec.Authorizer, rec.Reason, rec.Target) {
		return protoerr.ErrUnauthorized
	}
	return nil
}

// SubmitCoSignature records one validator's co-signature over rec
// (spec.md §4.7 step 3). It returns the assembled certificate once
// quorum is reached.
func (h *Handler) SubmitCoSignature(rec *Record, validator common.NodeID, weight uint64, signature []byte) (*quorum.Certificate, error) {
	if _, err := h.pool.AddVote(quorum.Vote{
		Purpose:   quorum.PurposeErasureAuthorization,
		Subject:   rec.Target,
		Voter:     validator,
		Weight:    weight,
		Signature: signature,
	}); err != nil {
		return nil, err
	}
	cert, ok := h.pool.BuildCertificate(quorum.PurposeErasureAuthorization, rec.Target)
	if !ok {
		return nil, nil
	}
	return cert, nil
}

// Apply admits the erasure record (as an ordinary entry whose parent
// is the target, spec.md §4.7 step 3) and propagates the tombstone to
// the target (step 4). If this Handler has already erased target, Apply
// returns nil without verifying, admitting or tombstoning anything, so
// a stale retry of an already-applied erasure is a harmless no-op
// rather than a double tombstone.
func (h *Handler) Apply(recordEntry *entry.Entry, rec *Record, cert *quorum.Certificate) error {
	h.mu.Lock()
	alreadyErased := h.erasedTargets[rec.Target]
	h.mu.Unlock()
	if alreadyErased {
		return nil
	}
	if err := cert.Verify(); err != nil {
		return err
	}

	if err := h.graph.Admit(recordEntry); err != nil {
		return err
	}
	recordID := recordEntry.ID()
	if err := h.graph.Tombstone(rec.Target, recordID, rec.Reason.String()); err != nil {
		return err
	}

	h.mu.Lock()
	h.erasedTargets[rec.Target] = true
	h.mu.Unlock()
	return nil
}

// RejectReseed implements spec.md §4.7's final guarantee: a freshly
// admitted or regenerated entry whose id matches a previously erased
// target must be refused, since the erasure record's scope is the id
// itself, not merely the currently-held bytes.
func (h *Handler) RejectReseed(id common.Hash) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.erasedTargets[id] {
		return protoerr.ErrErased
	}
	return nil
}

func (r Reason) String() string {
	switch r {
	case ReasonRightToErasure:
		return "right-to-erasure"
	case ReasonOwnerInitiated:
		return "owner-initiated"
	case ReasonPolicyTTL:
		return "policy-ttl"
	case ReasonLegalOrder:
		return "legal-order"
	default:
		return "unknown"
	}
}
