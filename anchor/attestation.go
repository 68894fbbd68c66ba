package anchor

import (
	"encoding/binary"
	"fmt"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/quorum"
)

// AttestationType distinguishes the three operations spec.md §4.9 names
// as attestation-gated.
type AttestationType byte

const (
	AttestAnchorPromotion AttestationType = iota + 1
	AttestErasureAuthorization
	AttestValidatorSetChange
)

// AttestationEnvelope is an attestation entry's content (spec.md §4.2
// glossary "Attestation entry"): a typed envelope naming the target
// entry, the attesting validator, the attestation's purpose and OES
// epoch, and a hybrid signature over the envelope's other fields. It is
// carried as an ordinary entry's Content, with the target included in
// that entry's Parents.
type AttestationEnvelope struct {
	Target    common.Hash
	Validator common.NodeID
	Type      AttestationType
	OESEpoch  uint64
	Signature crypto.HybridSignature
}

// signingPayload is the envelope content that gets signed, i.e.
// everything except the signature itself.
func (a *AttestationEnvelope) signingPayload() []byte {
	buf := make([]byte, 0, 2*common.HashLength+1+8)
	buf = append(buf, a.Target.Bytes()...)
	buf = append(buf, a.Validator.Bytes()...)
	buf = append(buf, byte(a.Type))
	var epoch [8]byte
	binary.BigEndian.PutUint64(epoch[:], a.OESEpoch)
	buf = append(buf, epoch[:]...)
	return buf
}

func (a *AttestationEnvelope) Sign(sk *crypto.HybridSecretKey) error {
	sig, err := crypto.Sign(a.signingPayload(), sk)
	if err != nil {
		return err
	}
	a.Signature = sig
	return nil
}

func (a *AttestationEnvelope) VerifySignature(pk *crypto.HybridPublicKey) bool {
	return crypto.Verify(a.signingPayload(), a.Signature, pk)
}

// Encode serializes the envelope for storage as an entry's Content.
func (a *AttestationEnvelope) Encode() []byte {
	buf := a.signingPayload()
	var sigLen [4]byte
	binary.BigEndian.PutUint32(sigLen[:], uint32(len(a.Signature)))
	buf = append(buf, sigLen[:]...)
	buf = append(buf, a.Signature...)
	return buf
}

// DecodeAttestationEnvelope is the inverse of Encode.
func DecodeAttestationEnvelope(b []byte) (*AttestationEnvelope, error) {
	const fixedLen = 2*common.HashLength + 1 + 8
	if len(b) < fixedLen+4 {
		return nil, fmt.Errorf("anchor: truncated attestation envelope")
	}
	a := &AttestationEnvelope{}
	off := 0
	a.Target = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength
	a.Validator = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength
	a.Type = AttestationType(b[off])
	off++
	a.OESEpoch = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	sigLen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if off+int(sigLen) > len(b) {
		return nil, fmt.Errorf("anchor: truncated attestation signature")
	}
	a.Signature = crypto.HybridSignature(append([]byte(nil), b[off:off+int(sigLen)]...))
	return a, nil
}

// purposeFor maps an attestation type to the quorum purpose it feeds,
// keeping the two enumerations distinct (an attestation entry's wire
// type vs. the in-memory quorum pool's bookkeeping tag) while preventing
// them from drifting out of the three spec.md §4.9 names.
func purposeFor(t AttestationType) (quorum.Purpose, error) {
	switch t {
	case AttestAnchorPromotion:
		return quorum.PurposeAnchorAttestation, nil
	case AttestErasureAuthorization:
		return quorum.PurposeErasureAuthorization, nil
	case AttestValidatorSetChange:
		return quorum.PurposeValidatorSetChange, nil
	default:
		return 0, fmt.Errorf("anchor: unknown attestation type %d", t)
	}
}

// SubmitVote validates envelope's signature against pk and, if valid,
// records it as a weighted vote in pool.
func SubmitVote(pool *quorum.Pool, envelope *AttestationEnvelope, pk *crypto.HybridPublicKey, weight uint64) (bool, error) {
	if !envelope.VerifySignature(pk) {
		return false, crypto.ErrInvalidSignature
	}
	purpose, err := purposeFor(envelope.Type)
	if err != nil {
		return false, err
	}
	return pool.AddVote(quorum.Vote{
		Purpose:   purpose,
		Subject:   envelope.Target,
		Voter:     envelope.Validator,
		Weight:    weight,
		Signature: envelope.Signature,
	})
}
