// Package namechain defines the network rules and name-identity primitives
// for the namechain registry suite.
//
// This file implements the EIP-137 name hashing scheme used to identify
// names throughout the suite:
//   - Labelhash: keccak256 of a single label ("alice" within "alice.name.eth")
//   - Namehash: the recursive node hash of a full dotted name
//   - TokenID: the uint256 form of a labelhash, used by the ownership ledger
package namechain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Labelhash returns the keccak256 hash of a single name label. Labels are
// lower-cased before hashing; the registry never stores mixed-case names.
func Labelhash(label string) common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte(strings.ToLower(label))))
}

// Namehash returns the EIP-137 node hash of a full dotted name, e.g.
// "alice.name.eth". The empty name hashes to the zero node.
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelhash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), labelhash))
	}
	return node
}

// Subnode returns the node of a label underneath a parent node, without
// re-hashing the whole dotted name.
func Subnode(parent common.Hash, label string) common.Hash {
	return common.BytesToHash(crypto.Keccak256(parent.Bytes(), Labelhash(label).Bytes()))
}

// TokenID returns the ownership-ledger token identifier of a label: the
// labelhash interpreted as an unsigned 256-bit integer.
func TokenID(label string) *big.Int {
	return new(big.Int).SetBytes(Labelhash(label).Bytes())
}
