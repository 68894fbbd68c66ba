package net

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strandnet/strand/crypto"
)

func TestSessionHandshakeAgreesOnChannelKey(t *testing.T) {
	remotePub, remoteSec, err := crypto.GenerateKEMKeyPair()
	require.NoError(t, err)

	initiatorSession, ct, err := DialInitiator(remotePub)
	require.NoError(t, err)

	responderSession, err := AcceptResponder(ct, remoteSec)
	require.NoError(t, err)

	require.Equal(t, initiatorSession.ChannelKey, responderSession.ChannelKey)
}

func TestSessionHandshakeFailsWithWrongSecretKey(t *testing.T) {
	remotePub, _, err := crypto.GenerateKEMKeyPair()
	require.NoError(t, err)
	_, wrongSec, err := crypto.GenerateKEMKeyPair()
	require.NoError(t, err)

	initiatorSession, ct, err := DialInitiator(remotePub)
	require.NoError(t, err)

	responderSession, err := AcceptResponder(ct, wrongSec)
	require.NoError(t, err)
	require.NotEqual(t, initiatorSession.ChannelKey, responderSession.ChannelKey)
}
