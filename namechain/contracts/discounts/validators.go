package discounts

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// discountApprovalTag domain-separates discount approval signatures from
// any other signed payload in the system.
const discountApprovalTag = "namechain discount approval:"

// SignatureValidator accepts registrants that present a secp256k1 signature
// from a trusted off-chain signer over (tag, validator address, registrant).
// Binding the validator address into the digest prevents replaying an
// approval against a different discount's validator.
type SignatureValidator struct {
	addr   common.Address // the validator's own capability address
	signer common.Address // trusted approval signer
}

// NewSignatureValidator creates the validator. addr is the capability
// address it is wired under; signer is the trusted approval key's address.
func NewSignatureValidator(addr, signer common.Address) *SignatureValidator {
	return &SignatureValidator{addr: addr, signer: signer}
}

// ApprovalDigest returns the digest the trusted signer must sign to approve
// a registrant for discounts behind the validator at addr.
func ApprovalDigest(addr, registrant common.Address) common.Hash {
	return common.BytesToHash(crypto.Keccak256(
		[]byte(discountApprovalTag),
		addr.Bytes(),
		registrant.Bytes(),
	))
}

// SignApproval produces a proof payload for the registrant with the given
// signer key. Used by approval tooling and tests.
func SignApproval(addr, registrant common.Address, key *ecdsa.PrivateKey) ([]byte, error) {
	digest := ApprovalDigest(addr, registrant)
	return crypto.Sign(digest.Bytes(), key)
}

// IsValidDiscountRegistration implements Validator: the proof must be a
// 65-byte [R || S || V] signature by the trusted signer over the approval
// digest.
func (v *SignatureValidator) IsValidDiscountRegistration(registrant common.Address, proof []byte) bool {
	if len(proof) != crypto.SignatureLength {
		return false
	}
	digest := ApprovalDigest(v.addr, registrant)
	pub, err := crypto.SigToPub(digest.Bytes(), proof)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == v.signer
}

// AllowlistValidator accepts exactly the registrants it was configured
// with; the proof payload is ignored. Used for curated early-access lists.
type AllowlistValidator struct {
	allowed map[common.Address]struct{}
}

// NewAllowlistValidator creates the validator over the given registrants.
func NewAllowlistValidator(registrants ...common.Address) *AllowlistValidator {
	allowed := make(map[common.Address]struct{}, len(registrants))
	for _, addr := range registrants {
		allowed[addr] = struct{}{}
	}
	return &AllowlistValidator{allowed: allowed}
}

// IsValidDiscountRegistration implements Validator.
func (v *AllowlistValidator) IsValidDiscountRegistration(registrant common.Address, _ []byte) bool {
	_, ok := v.allowed[registrant]
	return ok
}
