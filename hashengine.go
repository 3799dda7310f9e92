package merkle

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Algorithm names a supported digest algorithm.
type Algorithm string

const (
	SHA224   Algorithm = "sha224"
	SHA256   Algorithm = "sha256"
	SHA384   Algorithm = "sha384"
	SHA512   Algorithm = "sha512"
	SHA3_224 Algorithm = "sha3_224"
	SHA3_256 Algorithm = "sha3_256"
	SHA3_384 Algorithm = "sha3_384"
	SHA3_512 Algorithm = "sha3_512"
)

// SupportedAlgorithms enumerates every Algorithm this build accepts.
var SupportedAlgorithms = []Algorithm{
	SHA224, SHA256, SHA384, SHA512, SHA3_224, SHA3_256, SHA3_384, SHA3_512,
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA224:
		return sha256.New224(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	case SHA3_224:
		return sha3.New224(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case SHA3_384:
		return sha3.New384(), nil
	case SHA3_512:
		return sha3.New512(), nil
	default:
		return nil, unsupportedParameterf("algorithm %q", string(a))
	}
}

// domain separation prefixes, RFC 6962 style.
const (
	leafPrefix     = byte(0x00)
	interiorPrefix = byte(0x01)
)

// Sign marks which side of a fold step a signed digest occupies.
type Sign int8

const (
	Left  Sign = +1
	Right Sign = -1
)

// SignedDigest is one (sign, digest) entry of an audit or consistency path.
type SignedDigest struct {
	Sign   Sign
	Digest []byte
}

// HashEngine is the pure, stateless hashing core. It holds no tree state and
// may be shared across goroutines without synchronization, per the
// concurrency model: the only things that ever change are the bytes fed in.
type HashEngine struct {
	algorithm Algorithm
	encoding  TextEncoding
	security  bool
}

// NewHashEngine validates algorithm/encoding and returns a ready engine.
func NewHashEngine(algorithm Algorithm, enc TextEncoding, security bool) (*HashEngine, error) {
	if _, err := algorithm.newHash(); err != nil {
		return nil, err
	}
	if !enc.valid() {
		return nil, unsupportedParameterf("encoding %q", string(enc))
	}
	return &HashEngine{algorithm: algorithm, encoding: enc, security: security}, nil
}

func (e *HashEngine) Algorithm() Algorithm   { return e.algorithm }
func (e *HashEngine) Encoding() TextEncoding { return e.encoding }
func (e *HashEngine) Security() bool         { return e.security }

func (e *HashEngine) newHash() hash.Hash {
	h, _ := e.algorithm.newHash()
	return h
}

func (e *HashEngine) prefixBytes(p byte) ([]byte, error) {
	return e.encoding.EncodeString(string(rune(p)))
}

// hexDigest runs h and returns the lowercase hex digest re-encoded under
// the engine's configured text encoding.
func (e *HashEngine) hexDigest(h hash.Hash) ([]byte, error) {
	sum := h.Sum(nil)
	return e.encoding.EncodeString(hex.EncodeToString(sum))
}

// HashData implements hash_data: accepts bytes or a string, prepends the
// leaf domain-separation prefix when security is on, and returns the
// lowercase hex digest encoded under the configured encoding.
func (e *HashEngine) HashData(x interface{}) ([]byte, error) {
	raw, err := toBytes(x, e.encoding)
	if err != nil {
		return nil, err
	}

	h := e.newHash()
	if e.security {
		prefix, err := e.prefixBytes(leafPrefix)
		if err != nil {
			return nil, err
		}
		h.Write(prefix)
	}
	h.Write(raw)
	return e.hexDigest(h)
}

// HashFile streams a file's bytes through HashData's hashing path. This is
// the optional engine helper named in the external interfaces.
func (e *HashEngine) HashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := e.newHash()
	if e.security {
		prefix, err := e.prefixBytes(leafPrefix)
		if err != nil {
			return nil, err
		}
		h.Write(prefix)
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return e.hexDigest(h)
}

// HashPair implements hash_pair: a and b are already-encoded digests.
func (e *HashEngine) HashPair(a, b []byte) ([]byte, error) {
	h := e.newHash()
	if e.security {
		prefix, err := e.prefixBytes(interiorPrefix)
		if err != nil {
			return nil, err
		}
		h.Write(prefix)
		h.Write(a)
		h.Write(prefix)
		h.Write(b)
	} else {
		h.Write(a)
		h.Write(b)
	}
	return e.hexDigest(h)
}

// HashPath implements hash_path: folds a non-empty signed path into a
// single digest, reducing from start. A +1 sign pairs the current element
// as left operand with its right neighbor; -1 pairs it as right operand
// with its left neighbor. When the indicated neighbor falls off either end
// of the sequence, the neighbor on the available side is used instead and
// the roles swap.
//
// The merged element inherits the sign of the consumed neighbor: that
// neighbor's sign records where the combined subtree sits relative to its
// own parent, which is exactly the direction the next step must take. The
// one exception is a merge at the left end, which is by construction the
// leftmost remaining subtree and keeps folding rightward.
func (e *HashEngine) HashPath(path []SignedDigest, start int) ([]byte, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if start < 0 || start >= len(path) {
		return nil, errors.Errorf("merkle: hash_path start %d outside path of length %d", start, len(path))
	}
	if len(path) == 1 {
		return path[0].Digest, nil
	}

	seq := make([]SignedDigest, len(path))
	copy(seq, path)
	i := start

	for len(seq) > 1 {
		pairRight := seq[i].Sign == Left
		if pairRight && i == len(seq)-1 {
			pairRight = false
		} else if !pairRight && i == 0 {
			pairRight = true
		}

		if pairRight {
			combined, err := e.HashPair(seq[i].Digest, seq[i+1].Digest)
			if err != nil {
				return nil, err
			}
			sign := Left
			if i != 0 {
				sign = seq[i+1].Sign
			}
			seq[i] = SignedDigest{Sign: sign, Digest: combined}
			seq = append(seq[:i+1], seq[i+2:]...)
		} else {
			combined, err := e.HashPair(seq[i-1].Digest, seq[i].Digest)
			if err != nil {
				return nil, err
			}
			seq[i-1] = SignedDigest{Sign: seq[i-1].Sign, Digest: combined}
			seq = append(seq[:i], seq[i+1:]...)
			i--
		}
	}

	return seq[0].Digest, nil
}

func toBytes(x interface{}, enc TextEncoding) ([]byte, error) {
	switch v := x.(type) {
	case []byte:
		return v, nil
	case string:
		return enc.EncodeString(v)
	default:
		return nil, unsupportedParameterf("hash_data input type %T", x)
	}
}
