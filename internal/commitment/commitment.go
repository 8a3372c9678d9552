// Package commitment produces the secret and hash used in the commit phase of
// the lottery resolution protocol.
package commitment

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// PreimageSize is the number of random bytes drawn for a preimage (256 bits).
const PreimageSize = 32

// ErrNilPreimage is returned when hashing or verifying a missing preimage.
var ErrNilPreimage = errors.New("commitment: preimage is nil")

// Secret is a preimage together with the hash that gets committed on-chain.
type Secret struct {
	Preimage *big.Int
	Hash     *big.Int
}

// New draws a fresh 256-bit preimage from r and hashes it. A nil reader uses
// crypto/rand.
func New(r io.Reader) (*Secret, error) {
	if r == nil {
		r = rand.Reader
	}

	buf := make([]byte, PreimageSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read preimage: %w", err)
	}

	preimage := new(big.Int).SetBytes(buf)
	hash, err := Hash(preimage)
	if err != nil {
		return nil, err
	}

	return &Secret{Preimage: preimage, Hash: hash}, nil
}

// Hash returns keccak256 of the minimal big-endian encoding of preimage,
// interpreted as a uint256. Leading zero bytes are not part of the input, so
// a zero preimage hashes the empty byte string.
func Hash(preimage *big.Int) (*big.Int, error) {
	if preimage == nil {
		return nil, ErrNilPreimage
	}
	if preimage.Sign() < 0 {
		return nil, fmt.Errorf("commitment: negative preimage %s", preimage)
	}
	return new(big.Int).SetBytes(crypto.Keccak256(preimage.Bytes())), nil
}

// Verify reports whether hash commits to preimage.
func Verify(preimage, hash *big.Int) bool {
	if hash == nil {
		return false
	}
	want, err := Hash(preimage)
	if err != nil {
		return false
	}
	return want.Cmp(hash) == 0
}
