package discounts

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// TestSignatureValidator verifies the approval signature flow end to end:
// a signature from the trusted signer passes, anything else fails.
func TestSignatureValidator(t *testing.T) {
	require := require.New(t)

	signerKey, err := crypto.GenerateKey()
	require.NoError(err)
	signer := crypto.PubkeyToAddress(signerKey.PublicKey)

	v := NewSignatureValidator(validatorAddr, signer)

	proof, err := SignApproval(validatorAddr, registrant, signerKey)
	require.NoError(err)
	require.True(v.IsValidDiscountRegistration(registrant, proof))

	// The approval is bound to the registrant: presenting it for another
	// address fails.
	require.False(v.IsValidDiscountRegistration(stranger, proof))

	// An approval signed for a different validator address fails.
	otherValidator := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	crossProof, err := SignApproval(otherValidator, registrant, signerKey)
	require.NoError(err)
	require.False(v.IsValidDiscountRegistration(registrant, crossProof))

	// A signature from an untrusted key fails.
	mallory, err := crypto.GenerateKey()
	require.NoError(err)
	forged, err := SignApproval(validatorAddr, registrant, mallory)
	require.NoError(err)
	require.False(v.IsValidDiscountRegistration(registrant, forged))

	// Truncated or empty proofs fail without panicking.
	require.False(v.IsValidDiscountRegistration(registrant, proof[:10]))
	require.False(v.IsValidDiscountRegistration(registrant, nil))
}

// TestAllowlistValidator checks membership semantics; the proof payload is
// irrelevant.
func TestAllowlistValidator(t *testing.T) {
	require := require.New(t)

	v := NewAllowlistValidator(registrant)
	require.True(v.IsValidDiscountRegistration(registrant, nil))
	require.True(v.IsValidDiscountRegistration(registrant, []byte("ignored")))
	require.False(v.IsValidDiscountRegistration(stranger, nil))
}
