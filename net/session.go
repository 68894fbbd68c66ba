package net

import (
	"fmt"

	"github.com/strandnet/strand/crypto"
)

// Session is an established encrypted channel to one peer. The
// channel key is the hybrid KEM shared secret (spec.md §4.1: classical
// ECDH plus a lattice KEM, combined under a keyed hash), replacing
// p2p/rlpx's ECDH-only channel-key derivation with the module's hybrid
// scheme so the transport itself survives a future classical break.
type Session struct {
	ChannelKey [32]byte
}

// DialInitiator starts a session as the connecting side: it
// encapsulates against the remote's hybrid KEM public key and returns
// both the session and the ciphertext to send the remote so it can
// decapsulate the same key.
func DialInitiator(remote *crypto.HybridKEMPublicKey) (*Session, *crypto.HybridCiphertext, error) {
	ct, shared, err := crypto.Encapsulate(remote)
	if err != nil {
		return nil, nil, fmt.Errorf("net: initiate session: %w", err)
	}
	return sessionFromSecret(shared), ct, nil
}

// AcceptResponder completes a session as the accepting side, given the
// ciphertext the initiator sent and this node's own hybrid KEM secret
// key.
func AcceptResponder(ct *crypto.HybridCiphertext, local *crypto.HybridKEMSecretKey) (*Session, error) {
	shared, err := crypto.Decapsulate(ct, local)
	if err != nil {
		return nil, fmt.Errorf("net: accept session: %w", err)
	}
	return sessionFromSecret(shared), nil
}

func sessionFromSecret(shared []byte) *Session {
	s := &Session{}
	copy(s.ChannelKey[:], shared)
	return s
}
