package reverse

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-namechain/inter"
)

// MigrationShim fans a single logical set-primary-name out to both reverse
// registrars during the protocol transition, so consumers of either can
// observe the result. The new-protocol registrar is written first, then the
// legacy one; the legacy receipt (node) is returned, matching what legacy
// consumers expect. If either write fails the whole operation fails: calls
// are synchronous within the same atomic unit, so the enclosing snapshot
// unwinds the partial write.
type MigrationShim struct {
	l2     *L2Registrar
	legacy Registrar
}

// NewMigrationShim wires the shim over the two registrars.
func NewMigrationShim(l2 *L2Registrar, legacy Registrar) *MigrationShim {
	return &MigrationShim{l2: l2, legacy: legacy}
}

// SetPrimaryName performs the dual write on behalf of a relayer (the
// registration controller). caller and owner are forwarded to the legacy
// registrar's authorization; proof authorizes the new-protocol write.
func (s *MigrationShim) SetPrimaryName(caller, addr, owner, resolverAddr common.Address, fullName string, proof SignatureProof, now inter.Timestamp) (common.Hash, error) {
	if _, err := s.l2.SetNameForAddrWithSignature(addr, fullName, proof, now); err != nil {
		return common.Hash{}, err
	}
	node, err := s.legacy.SetNameForAddr(caller, addr, owner, resolverAddr, fullName)
	if err != nil {
		return common.Hash{}, err
	}
	return node, nil
}
