package merkle

import "github.com/pkg/errors"

// Sentinel errors returned by the hash engine, tree and verifier. Callers
// should compare against these with errors.Is; wrapping via pkg/errors
// preserves a stack trace while keeping the sentinel comparable.
var (
	// ErrUnsupportedParameter is returned when a tree is configured with an
	// algorithm or encoding this build does not know how to handle.
	ErrUnsupportedParameter = errors.New("merkle: unsupported parameter")

	// ErrEmptyPath is returned by hash_path when called with zero elements.
	ErrEmptyPath = errors.New("merkle: hash_path called with empty path")

	// ErrEmptyTree is returned by operations that require at least one leaf.
	ErrEmptyTree = errors.New("merkle: tree has no leaves")

	// ErrNoPathForChallenge marks an audit or consistency challenge that
	// matches no leaf/subtree. Proof generation never returns it: a
	// failure Proof travels instead, so the rejection can be transmitted
	// and audited offline. Collaborators layering their own challenge
	// lookups can use it for the same condition.
	ErrNoPathForChallenge = errors.New("merkle: no path for challenge")

	// ErrInvalidProof is returned by proofjson and other collaborators when
	// a serialized proof cannot be reconstructed into a valid Proof value.
	ErrInvalidProof = errors.New("merkle: invalid proof")
)

// unsupportedParameterf wraps ErrUnsupportedParameter with the offending
// value so callers see what was rejected without losing errors.Is matching.
func unsupportedParameterf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedParameter, format, args...)
}
