// Package reverse implements primary-name (address → name) resolution: the
// legacy reverse registrar, the new-protocol registrar with its
// signature-authorized relayer flow, and the migration shim that dual-writes
// to both during a protocol transition.
package reverse

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/namechain"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

var (
	// ErrNotAuthorized is returned when the caller is neither the address
	// whose reverse record is being set nor an approved controller.
	ErrNotAuthorized = errors.New("caller may not set this reverse record")

	// ErrNotOwner guards owner-only controller approval.
	ErrNotOwner = errors.New("caller is not the registrar owner")
)

// Registrar is the legacy reverse-registrar capability consumed by the
// registration controller.
type Registrar interface {
	// SetNameForAddr sets the primary name of addr and returns the
	// reverse node the record lives under.
	SetNameForAddr(caller, addr, owner, resolverAddr common.Address, fullName string) (common.Hash, error)
}

// EventReverseClaimed is emitted when a primary name is set.
type EventReverseClaimed struct {
	Addr common.Address
	Node common.Hash
	Name string
}

// reverseRootNode is the namehash of "addr.reverse", the parent of every
// reverse record node.
var reverseRootNode = namechain.Namehash("addr.reverse")

// ReverseNode returns the node of an address's reverse record:
// keccak(addr.reverse node, labelhash(hex(addr))), hex without 0x prefix.
func ReverseNode(addr common.Address) common.Hash {
	hexAddr := strings.ToLower(common.Bytes2Hex(addr.Bytes()))
	return namechain.Subnode(reverseRootNode, hexAddr)
}

// legacy state key prefix: record per reversed address.
var legacyPrefix = []byte("r/legacy/")

// LegacyRegistrar is the pre-migration reverse registrar: one primary name
// per address, no signature flow.
type LegacyRegistrar struct {
	sdb         *state.StateDB
	owner       common.Address
	controllers map[common.Address]bool
	log         *logrus.Entry
}

// NewLegacyRegistrar creates the registrar owned by owner.
func NewLegacyRegistrar(sdb *state.StateDB, owner common.Address) *LegacyRegistrar {
	return &LegacyRegistrar{
		sdb:         sdb,
		owner:       owner,
		controllers: make(map[common.Address]bool),
		log:         logrus.WithField("module", "reverse"),
	}
}

// ApproveController lets an account set reverse records on behalf of other
// addresses (the registration controller uses this for reverse-record
// delegation). Owner-only.
func (r *LegacyRegistrar) ApproveController(caller, controller common.Address, approved bool) error {
	if caller != r.owner {
		return ErrNotOwner
	}
	r.controllers[controller] = approved
	return nil
}

// SetNameForAddr implements Registrar. The caller must be the address
// itself or an approved controller.
func (r *LegacyRegistrar) SetNameForAddr(caller, addr, owner, resolverAddr common.Address, fullName string) (common.Hash, error) {
	if caller != addr && !r.controllers[caller] {
		return common.Hash{}, ErrNotAuthorized
	}
	node := ReverseNode(addr)
	r.sdb.Set(legacyKey(addr), []byte(fullName))
	r.sdb.AddEvent(EventReverseClaimed{Addr: addr, Node: node, Name: fullName})
	r.log.WithFields(logrus.Fields{
		"addr": addr.Hex(),
		"name": fullName,
	}).Debug("legacy reverse record set")
	return node, nil
}

// NameForAddr returns the primary name of addr, or "" if unset.
func (r *LegacyRegistrar) NameForAddr(addr common.Address) (string, error) {
	raw, err := r.sdb.Get(legacyKey(addr))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func legacyKey(addr common.Address) []byte {
	return append(append([]byte(nil), legacyPrefix...), addr.Bytes()...)
}
