package namechain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// TestNamehash verifies the EIP-137 reference vectors.
func TestNamehash(t *testing.T) {
	require := require.New(t)

	// The empty name is the zero node.
	require.Equal(common.Hash{}, Namehash(""))

	// Reference vectors from EIP-137.
	require.Equal(
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		Namehash("eth"),
	)
	require.Equal(
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		Namehash("foo.eth"),
	)

	// Hashing is case-insensitive.
	require.Equal(Namehash("foo.eth"), Namehash("FOO.eth"))
}

// TestLabelhash checks the single-label hash against a known keccak256 value.
func TestLabelhash(t *testing.T) {
	require := require.New(t)

	require.Equal(
		common.HexToHash("0x4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0"),
		Labelhash("eth"),
	)
	require.Equal(Labelhash("alice"), Labelhash("ALICE"))
}

// TestSubnode verifies that building a node from parent+label matches
// hashing the full dotted name.
func TestSubnode(t *testing.T) {
	require := require.New(t)

	root := Namehash("name.eth")
	require.Equal(Namehash("alice.name.eth"), Subnode(root, "alice"))
}

// TestTokenID checks that the token identifier is the labelhash as uint256.
func TestTokenID(t *testing.T) {
	require := require.New(t)

	id := TokenID("alice")
	require.Equal(Labelhash("alice").Bytes(), common.BigToHash(id).Bytes())
}
