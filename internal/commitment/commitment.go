// Package commitment derives note commitments and nullifiers.
//
// A commitment is MiMC(value, asset, salt) over the BN254 scalar field and a
// nullifier is MiMC(tag, commitment). Both are rendered as the hex encoding of
// a 32 byte field element. The same hash is re-evaluated inside the Groth16
// circuit in internal/prover, so the encodings here are part of the proof
// statement.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

// SaltSize keeps salts strictly below the field modulus.
const SaltSize = 31

// MaxValueBits is the range the proving circuit enforces on note values.
const MaxValueBits = 64

const nullifierDomain = "umbra/nullifier/v1"

// Note is a commitment together with the opening that produced it.
type Note struct {
	Commitment string
	Value      *big.Int
	Asset      string
	Salt       []byte
}

// SaltHex returns the salt in the form carried by ProofRequest.Salt.
func (n *Note) SaltHex() string {
	return hex.EncodeToString(n.Salt)
}

type Engine struct {
	rand io.Reader
}

func NewEngine() *Engine {
	return &Engine{rand: rand.Reader}
}

// NewEngineWithRand is NewEngine with an explicit salt source.
func NewEngineWithRand(r io.Reader) *Engine {
	return &Engine{rand: r}
}

// Commit commits to value of asset under a fresh random salt. An empty asset
// means the native mint.
func (e *Engine) Commit(value *big.Int, asset string) (*Note, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(e.rand, salt); err != nil {
		return nil, errors.Wrap(err, "read commitment salt")
	}
	return CommitWithSalt(value, asset, salt)
}

// NullifierOf derives the spend marker of a commitment.
func (e *Engine) NullifierOf(commitment string) string {
	return NullifierOf(commitment)
}

// CommitWithSalt is the deterministic core of Commit.
func CommitWithSalt(value *big.Int, asset string, salt []byte) (*Note, error) {
	if err := CheckValue(value); err != nil {
		return nil, err
	}
	if len(salt) != SaltSize {
		return nil, errors.Newf(errors.CodeInvalidAmount, "salt must be %d bytes", SaltSize)
	}

	v := ValueElement(value)
	a := AssetElement(asset)
	s := SaltElement(salt)
	cm := hashElements(&v, &a, &s)

	return &Note{
		Commitment: encode(&cm),
		Value:      new(big.Int).Set(value),
		Asset:      NormalizeAsset(asset),
		Salt:       append([]byte(nil), salt...),
	}, nil
}

// Valid reports whether s is the canonical hex encoding of a field element,
// as produced by Commit.
func Valid(s string) bool {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != fr.Bytes {
		return false
	}
	var e fr.Element
	if err := e.SetBytesCanonical(raw); err != nil {
		return false
	}
	return encode(&e) == s
}

// NullifierOf hashes the commitment under the nullifier domain tag. Strings
// that are not a hex field element are first folded through SHA-256 so the
// function stays total.
func NullifierOf(commitment string) string {
	cm := CommitmentElement(commitment)
	tag := NullifierTag()
	nf := hashElements(&tag, &cm)
	return encode(&nf)
}

// CheckValue rejects values the circuit cannot represent.
func CheckValue(value *big.Int) error {
	if value == nil || value.Sign() <= 0 {
		return errors.ErrInvalidAmount
	}
	if value.BitLen() > MaxValueBits {
		return errors.Newf(errors.CodeInvalidAmount, "amount exceeds %d bits", MaxValueBits)
	}
	return nil
}

func NormalizeAsset(asset string) string {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return domain.NativeMint
	}
	return asset
}

func ValueElement(value *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(value)
	return e
}

// AssetElement maps an asset identifier into the field.
func AssetElement(asset string) fr.Element {
	sum := sha256.Sum256([]byte(NormalizeAsset(asset)))
	var e fr.Element
	e.SetBytes(sum[:])
	return e
}

func SaltElement(salt []byte) fr.Element {
	var e fr.Element
	e.SetBytes(salt)
	return e
}

// CommitmentElement parses a commitment string back into the field.
func CommitmentElement(commitment string) fr.Element {
	var e fr.Element
	raw, err := hex.DecodeString(commitment)
	if err == nil && len(raw) == fr.Bytes {
		e.SetBytes(raw)
		return e
	}
	sum := sha256.Sum256([]byte(commitment))
	e.SetBytes(sum[:])
	return e
}

// NullifierTag is the domain separator prepended to nullifier preimages.
func NullifierTag() fr.Element {
	sum := sha256.Sum256([]byte(nullifierDomain))
	var e fr.Element
	e.SetBytes(sum[:])
	return e
}

// ToBigInt converts a hex commitment or nullifier to its field integer.
func ToBigInt(s string) *big.Int {
	e := CommitmentElement(s)
	return e.BigInt(new(big.Int))
}

func hashElements(elems ...*fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for _, el := range elems {
		b := el.Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func encode(e *fr.Element) string {
	b := e.Bytes()
	return hex.EncodeToString(b[:])
}
