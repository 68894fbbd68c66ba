package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncapsulateDecapsulateRoundTrip(t *testing.T) {
	pub, sec, err := GenerateKEMKeyPair()
	require.NoError(t, err)

	ct, sharedA, err := Encapsulate(pub)
	require.NoError(t, err)

	sharedB, err := Decapsulate(ct, sec)
	require.NoError(t, err)
	require.Equal(t, sharedA, sharedB)
}

func TestDecapsulateWithWrongKeyDiffers(t *testing.T) {
	pub, _, err := GenerateKEMKeyPair()
	require.NoError(t, err)
	_, otherSec, err := GenerateKEMKeyPair()
	require.NoError(t, err)

	ct, sharedA, err := Encapsulate(pub)
	require.NoError(t, err)

	sharedB, err := Decapsulate(ct, otherSec)
	require.NoError(t, err)
	require.NotEqual(t, sharedA, sharedB)
}

func TestHybridCiphertextRoundTrip(t *testing.T) {
	pub, _, err := GenerateKEMKeyPair()
	require.NoError(t, err)

	ct, _, err := Encapsulate(pub)
	require.NoError(t, err)

	parsed, err := ParseHybridCiphertext(ct.Bytes())
	require.NoError(t, err)
	require.Equal(t, ct.Bytes(), parsed.Bytes())
}

func TestKEMPublicKeyRoundTrip(t *testing.T) {
	pub, _, err := GenerateKEMKeyPair()
	require.NoError(t, err)

	parsed, err := ParseHybridKEMPublicKey(pub.Bytes())
	require.NoError(t, err)
	require.Equal(t, pub.Bytes(), parsed.Bytes())
}
