// Package quorum implements a single reusable weighted-vote pool and
// certificate type, shared by anchor attestation, OES commitment
// agreement, controlled-erasure co-signature and validator-set-change
// attestation (spec.md §4.3, §4.5, §4.6). Each of those operations
// needs the same shape of "collect votes from a weighted validator set
// until 2f+1 agree, then produce a portable certificate" — this package
// is that shape, generalized over an opaque Subject hash and a Purpose
// tag so the call sites never need separate ad hoc implementations.
package quorum

import (
	"errors"
	"sort"
	"sync"

	"github.com/strandnet/strand/common"
)

var (
	ErrInvalidVote        = errors.New("quorum: invalid vote")
	ErrEquivocation       = errors.New("quorum: equivocation detected")
	ErrInsufficientQuorum = errors.New("quorum: insufficient quorum")
)

// Purpose distinguishes the four call sites so a vote collected for
// one purpose can never be replayed as a vote for another, even if the
// subject hash happened to coincide.
type Purpose byte

const (
	PurposeAnchorAttestation Purpose = iota + 1
	PurposeOESCommitment
	PurposeErasureAuthorization
	PurposeValidatorSetChange
)

// Vote is one validator's weighted endorsement of a subject under a
// purpose, grounded on consensus/bft.Vote.
type Vote struct {
	Purpose   Purpose
	Subject   common.Hash
	Voter     common.NodeID
	Weight    uint64
	Signature []byte
}

// Attestation is the vote material retained inside an assembled
// Certificate (consensus/bft.QCAttestation, generalized).
type Attestation struct {
	Voter     common.NodeID
	Weight    uint64
	Signature []byte
}

// Certificate is a quorum certificate: proof that a weighted majority
// of validators endorsed Subject under Purpose (consensus/bft.QC,
// generalized beyond height/round/blockhash to an opaque subject).
type Certificate struct {
	Purpose      Purpose
	Subject      common.Hash
	TotalWeight  uint64
	Required     uint64
	Attestations []Attestation
}

// Verify performs structural validation: enough weight, at least one
// attestation. It does not re-verify signatures — callers that hold
// the signing message and validator public keys should additionally
// call VerifySignatures.
func (c *Certificate) Verify() error {
	if c == nil {
		return ErrInsufficientQuorum
	}
	if c.Required == 0 || len(c.Attestations) == 0 {
		return ErrInsufficientQuorum
	}
	if c.TotalWeight < c.Required {
		return ErrInsufficientQuorum
	}
	return nil
}

// VerifySignatures re-verifies every attestation's signature over
// message against the corresponding validator's public key, using
// verifyFn (typically crypto.Verify). A certificate with even one bad
// signature is rejected outright; partial credit is never given.
func (c *Certificate) VerifySignatures(message []byte, pubkeys map[common.NodeID]func(msg, sig []byte) bool) bool {
	if err := c.Verify(); err != nil {
		return false
	}
	for _, att := range c.Attestations {
		verify, ok := pubkeys[att.Voter]
		if !ok {
			return false
		}
		if !verify(message, att.Signature) {
			return false
		}
	}
	return true
}

type voteKey struct {
	purpose Purpose
	subject common.Hash
}

// Pool collects weighted votes toward a quorum threshold for a single
// validator set. One Pool instance corresponds to one set of voting
// weights; rotate to a new Pool on validator-set change.
type Pool struct {
	mu sync.RWMutex

	totalWeight uint64
	required    uint64

	votesBySubject map[voteKey]map[common.NodeID]Vote
	// votedSubject detects equivocation: a voter must never endorse two
	// different subjects for the same purpose.
	votedSubject map[Purpose]map[common.NodeID]common.Hash
}

// NewPool creates a vote pool for a validator set with the given total
// voting weight. The quorum threshold is floor(2*total/3)+1, the
// Byzantine-fault-tolerant supermajority (spec.md glossary: "quorum").
func NewPool(totalWeight uint64) *Pool {
	return &Pool{
		totalWeight:    totalWeight,
		required:       RequiredWeight(totalWeight),
		votesBySubject: make(map[voteKey]map[common.NodeID]Vote),
		votedSubject:   make(map[Purpose]map[common.NodeID]common.Hash),
	}
}

// RequiredWeight returns the quorum threshold for a total voting
// weight: floor(2*total/3)+1 (spec.md glossary: "2f+1 quorum").
func RequiredWeight(total uint64) uint64 {
	if total == 0 {
		return 1
	}
	return (2*total)/3 + 1
}

func (p *Pool) Required() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.required
}

// AddVote records a vote, rejecting equivocation (the same voter
// endorsing two different subjects under the same purpose) and
// ignoring exact duplicates. Returns whether the vote was newly added.
func (p *Pool) AddVote(v Vote) (bool, error) {
	if err := validateVote(v); err != nil {
		return false, err
	}
	key := voteKey{purpose: v.Purpose, subject: v.Subject}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.votedSubject[v.Purpose] == nil {
		p.votedSubject[v.Purpose] = make(map[common.NodeID]common.Hash)
	}
	if prev, ok := p.votedSubject[v.Purpose][v.Voter]; ok {
		if prev != v.Subject {
			return false, ErrEquivocation
		}
		if existing, ok := p.votesBySubject[key]; ok {
			if _, exists := existing[v.Voter]; exists {
				return false, nil
			}
		}
	}
	p.votedSubject[v.Purpose][v.Voter] = v.Subject

	if p.votesBySubject[key] == nil {
		p.votesBySubject[key] = make(map[common.NodeID]Vote)
	}
	p.votesBySubject[key][v.Voter] = v
	return true, nil
}

// Tally returns the accumulated weight and vote count for a subject.
func (p *Pool) Tally(purpose Purpose, subject common.Hash) (uint64, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	key := voteKey{purpose: purpose, subject: subject}
	votes := p.votesBySubject[key]
	var total uint64
	for _, v := range votes {
		total += v.Weight
	}
	return total, len(votes)
}

// BuildCertificate assembles a Certificate once the subject has
// accumulated quorum weight. Attestations are sorted by voter id for
// a deterministic wire encoding.
func (p *Pool) BuildCertificate(purpose Purpose, subject common.Hash) (*Certificate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	key := voteKey{purpose: purpose, subject: subject}
	votes := p.votesBySubject[key]
	if len(votes) == 0 {
		return nil, false
	}
	var total uint64
	atts := make([]Attestation, 0, len(votes))
	for _, v := range votes {
		total += v.Weight
		atts = append(atts, Attestation{
			Voter:     v.Voter,
			Weight:    v.Weight,
			Signature: append([]byte(nil), v.Signature...),
		})
	}
	if total < p.required {
		return nil, false
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].Voter.Less(atts[j].Voter) })
	return &Certificate{
		Purpose:      purpose,
		Subject:      subject,
		TotalWeight:  total,
		Required:     p.required,
		Attestations: atts,
	}, true
}

// PruneSubjects drops all vote state for the given subjects, e.g. once
// a certificate has been built and is no longer contested.
func (p *Pool) PruneSubjects(purpose Purpose, subjects ...common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range subjects {
		delete(p.votesBySubject, voteKey{purpose: purpose, subject: s})
	}
}

func validateVote(v Vote) error {
	if v.Purpose == 0 || v.Weight == 0 || v.Voter.IsZero() || v.Subject.IsZero() {
		return ErrInvalidVote
	}
	if len(v.Signature) == 0 {
		return ErrInvalidVote
	}
	return nil
}
