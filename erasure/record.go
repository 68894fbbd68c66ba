// Package erasure implements the controlled-erasure protocol (spec.md
// §4.7): a requester constructs a signed erasure record, validators
// check policy and co-sign, and once a 2f+1 quorum of co-signatures
// exists the record is admitted and the target is tombstoned
// network-wide with regeneration permanently blocked.
package erasure

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/strandnet/strand/common"
	"github.com/strandnet/strand/crypto"
	"github.com/strandnet/strand/entry"
)

// Reason enumerates the allowed erasure reasons (spec.md §4.7), each
// with a distinct authorizer role.
type Reason byte

const (
	ReasonRightToErasure Reason = iota + 1 // regulatory right-to-erasure
	ReasonOwnerInitiated                   // owner-initiated
	ReasonPolicyTTL                        // policy time-to-live
	ReasonLegalOrder                       // external legal order
)

// Record is an erasure record's content: target id, reason,
// authorizer, timestamp and the requester's own signature. The
// validators' co-signatures are not part of it; they are collected in
// the quorum.Certificate passed to Handler.Apply. It is admitted to the
// graph as an ordinary entry with Target among its parents.
type Record struct {
	Target      common.Hash
	Reason      Reason
	Authorizer  common.NodeID
	Timestamp   time.Time
	Signature   crypto.HybridSignature
}

// signingPayload is everything in the record except the signature.
func (r *Record) signingPayload() []byte {
	buf := make([]byte, 0, common.HashLength*2+1+8)
	buf = append(buf, r.Target.Bytes()...)
	buf = append(buf, byte(r.Reason))
	buf = append(buf, r.Authorizer.Bytes()...)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(r.Timestamp.Unix()))
	buf = append(buf, ts[:]...)
	return buf
}

func (r *Record) Sign(sk *crypto.HybridSecretKey) error {
	sig, err := crypto.Sign(r.signingPayload(), sk)
	if err != nil {
		return err
	}
	r.Signature = sig
	return nil
}

func (r *Record) VerifySignature(pk *crypto.HybridPublicKey) bool {
	return crypto.Verify(r.signingPayload(), r.Signature, pk)
}

// Encode serializes the record for storage as an entry's Content.
func (r *Record) Encode() []byte {
	buf := r.signingPayload()
	var sigLen [4]byte
	binary.BigEndian.PutUint32(sigLen[:], uint32(len(r.Signature)))
	buf = append(buf, sigLen[:]...)
	buf = append(buf, r.Signature...)
	return buf
}

// DecodeRecord is the inverse of Encode.
func DecodeRecord(b []byte) (*Record, error) {
	const fixedLen = common.HashLength*2 + 1 + 8
	if len(b) < fixedLen+4 {
		return nil, fmt.Errorf("erasure: truncated record")
	}
	r := &Record{}
	off := 0
	r.Target = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength
	r.Reason = Reason(b[off])
	off++
	r.Authorizer = common.BytesToHash(b[off : off+common.HashLength])
	off += common.HashLength
	r.Timestamp = time.Unix(int64(binary.BigEndian.Uint64(b[off:off+8])), 0).UTC()
	off += 8
	sigLen := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	if off+int(sigLen) > len(b) {
		return nil, fmt.Errorf("erasure: truncated record signature")
	}
	r.Signature = crypto.HybridSignature(append([]byte(nil), b[off:off+int(sigLen)]...))
	return r, nil
}

// permittedReasons maps each MutabilityClass to the erasure reasons it
// accepts (spec.md §4.7 step 2: "target's mutability_class permits the
// reason"). Immutable entries permit none.
var permittedReasons = map[entry.MutabilityClass]map[Reason]bool{
	entry.OwnerErasable:  {ReasonOwnerInitiated: true, ReasonRightToErasure: true},
	entry.TtlErasable:    {ReasonPolicyTTL: true},
	entry.PolicyErasable: {ReasonPolicyTTL: true, ReasonLegalOrder: true, ReasonRightToErasure: true},
}

// MutabilityPermits reports whether class accepts reason.
func MutabilityPermits(class entry.MutabilityClass, reason Reason) bool {
	return permittedReasons[class][reason]
}
