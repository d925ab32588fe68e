// Package resolver defines the record-store capability the registration
// controller delegates profile records to. The record store itself is an
// external collaborator; this package only fixes the interface and the
// node-check rule that keeps a malicious batch from injecting records into
// another name.
package resolver

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNodeMismatch is returned when a batched record operation targets a
// different node than the batch is scoped to.
var ErrNodeMismatch = errors.New("record operation targets a foreign node")

// RecordOp is one opaque record-set operation. The controller does not
// interpret Key/Value; it only guarantees the Node scoping.
type RecordOp struct {
	Node  common.Hash
	Key   string
	Value []byte
}

// Resolver is the capability interface of the record store.
type Resolver interface {
	// MulticallWithNodeCheck applies the batch atomically after checking
	// that every operation targets the given node.
	MulticallWithNodeCheck(node common.Hash, records []RecordOp) error
}

// ProfileResolver is a minimal in-memory record store, enough to wire the
// controller's record delegation and to test the node-check rule.
type ProfileResolver struct {
	records map[common.Hash]map[string][]byte
}

// NewProfileResolver creates an empty record store.
func NewProfileResolver() *ProfileResolver {
	return &ProfileResolver{records: make(map[common.Hash]map[string][]byte)}
}

// MulticallWithNodeCheck implements Resolver. The whole batch is validated
// before any record is written, so a rejected batch leaves no residue.
func (r *ProfileResolver) MulticallWithNodeCheck(node common.Hash, records []RecordOp) error {
	for _, op := range records {
		if op.Node != node {
			return ErrNodeMismatch
		}
	}
	for _, op := range records {
		if r.records[node] == nil {
			r.records[node] = make(map[string][]byte)
		}
		r.records[node][op.Key] = append([]byte(nil), op.Value...)
	}
	return nil
}

// Record returns the stored value of a record, or nil.
func (r *ProfileResolver) Record(node common.Hash, key string) []byte {
	return r.records[node][key]
}
