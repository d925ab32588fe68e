package reverse

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-namechain/inter"
	"github.com/rony4d/go-namechain/namechain/contracts/state"
)

var (
	// ErrSignatureExpired is returned when a relayer presents an
	// authorization whose expiry has passed.
	ErrSignatureExpired = errors.New("reverse-record signature expired")

	// ErrInvalidSignature is returned when the authorization was not
	// signed by the address whose record is being set.
	ErrInvalidSignature = errors.New("reverse-record signature invalid")
)

// reverseAuthTag domain-separates reverse-record authorizations.
const reverseAuthTag = "namechain reverse record:"

// l2Prefix namespaces new-protocol reverse records, one per (addr, coin type).
var l2Prefix = []byte("r/l2/")

// SignatureProof authorizes a relayer to set the primary name of an
// address that does not call the registrar itself.
type SignatureProof struct {
	Expiry    inter.Timestamp // authorization deadline
	CoinTypes []uint64        // coin types the name applies to
	Signature []byte          // 65-byte [R || S || V] by the address itself
}

// L2Registrar is the new-protocol reverse registrar: per-coin-type primary
// names and a signature-authorized relayer flow.
type L2Registrar struct {
	sdb *state.StateDB
	log *logrus.Entry
}

// NewL2Registrar creates the registrar.
func NewL2Registrar(sdb *state.StateDB) *L2Registrar {
	return &L2Registrar{
		sdb: sdb,
		log: logrus.WithField("module", "reverse-l2"),
	}
}

// AuthDigest returns the digest addr must sign to authorize setting its
// primary name to fullName for the given coin types until expiry.
func AuthDigest(addr common.Address, expiry inter.Timestamp, fullName string, coinTypes []uint64) common.Hash {
	var expiryBytes [8]byte
	binary.BigEndian.PutUint64(expiryBytes[:], uint64(expiry))
	coinBytes := make([]byte, 8*len(coinTypes))
	for i, ct := range coinTypes {
		binary.BigEndian.PutUint64(coinBytes[8*i:], ct)
	}
	return common.BytesToHash(crypto.Keccak256(
		[]byte(reverseAuthTag),
		addr.Bytes(),
		expiryBytes[:],
		[]byte(fullName),
		coinBytes,
	))
}

// SignAuth produces a SignatureProof over the authorization digest with the
// address's own key. Used by relayer tooling and tests.
func SignAuth(addr common.Address, expiry inter.Timestamp, fullName string, coinTypes []uint64, key *ecdsa.PrivateKey) (SignatureProof, error) {
	digest := AuthDigest(addr, expiry, fullName, coinTypes)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return SignatureProof{}, err
	}
	return SignatureProof{Expiry: expiry, CoinTypes: coinTypes, Signature: sig}, nil
}

// SetNameForAddr sets the primary name for the default coin type when the
// address acts for itself (caller == addr), no signature involved.
func (r *L2Registrar) SetNameForAddr(caller, addr common.Address, fullName string) (common.Hash, error) {
	if caller != addr {
		return common.Hash{}, ErrNotAuthorized
	}
	r.set(addr, 0, fullName)
	node := ReverseNode(addr)
	r.sdb.AddEvent(EventReverseClaimed{Addr: addr, Node: node, Name: fullName})
	return node, nil
}

// SetNameForAddrWithSignature sets the primary name of addr on behalf of a
// relayer. The proof must be signed by addr itself over the authorization
// digest, and must not be expired at ledger time now.
func (r *L2Registrar) SetNameForAddrWithSignature(addr common.Address, fullName string, proof SignatureProof, now inter.Timestamp) (common.Hash, error) {
	if now > proof.Expiry {
		return common.Hash{}, ErrSignatureExpired
	}
	if len(proof.Signature) != crypto.SignatureLength {
		return common.Hash{}, ErrInvalidSignature
	}
	digest := AuthDigest(addr, proof.Expiry, fullName, proof.CoinTypes)
	pub, err := crypto.SigToPub(digest.Bytes(), proof.Signature)
	if err != nil {
		return common.Hash{}, ErrInvalidSignature
	}
	if crypto.PubkeyToAddress(*pub) != addr {
		return common.Hash{}, ErrInvalidSignature
	}

	coinTypes := proof.CoinTypes
	if len(coinTypes) == 0 {
		coinTypes = []uint64{0}
	}
	for _, ct := range coinTypes {
		r.set(addr, ct, fullName)
	}
	node := ReverseNode(addr)
	r.sdb.AddEvent(EventReverseClaimed{Addr: addr, Node: node, Name: fullName})
	r.log.WithFields(logrus.Fields{
		"addr":  addr.Hex(),
		"name":  fullName,
		"coins": len(coinTypes),
	}).Debug("reverse record set with signature")
	return node, nil
}

// NameForAddr returns the primary name of addr for a coin type, "" if unset.
func (r *L2Registrar) NameForAddr(addr common.Address, coinType uint64) (string, error) {
	raw, err := r.sdb.Get(l2Key(addr, coinType))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *L2Registrar) set(addr common.Address, coinType uint64, fullName string) {
	r.sdb.Set(l2Key(addr, coinType), []byte(fullName))
}

func l2Key(addr common.Address, coinType uint64) []byte {
	key := append(append([]byte(nil), l2Prefix...), addr.Bytes()...)
	var ct [8]byte
	binary.BigEndian.PutUint64(ct[:], coinType)
	return append(key, ct[:]...)
}
