package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const record = "oculusnonviditnecaurisaudivit"

func mustEngine(t *testing.T, security bool) *HashEngine {
	t.Helper()
	e, err := NewHashEngine(SHA256, EncodingUTF8, security)
	require.NoError(t, err)
	return e
}

func TestHashDataReferenceDigest(t *testing.T) {
	secure := mustEngine(t, true)
	plain := mustEngine(t, false)

	sum := sha256.Sum256(append([]byte{0x00}, []byte(record)...))
	got, err := secure.HashData(record)
	require.NoError(t, err)
	assert.Equal(t, []byte(hex.EncodeToString(sum[:])), got)

	sum = sha256.Sum256([]byte(record))
	got, err = plain.HashData(record)
	require.NoError(t, err)
	assert.Equal(t, []byte(hex.EncodeToString(sum[:])), got)
}

func TestHashPairReferenceDigest(t *testing.T) {
	secure := mustEngine(t, true)
	plain := mustEngine(t, false)

	data := []byte(record)

	buf := []byte{0x01}
	buf = append(buf, data...)
	buf = append(buf, 0x01)
	buf = append(buf, data...)
	sum := sha256.Sum256(buf)
	got, err := secure.HashPair(data, data)
	require.NoError(t, err)
	assert.Equal(t, []byte(hex.EncodeToString(sum[:])), got)

	sum = sha256.Sum256(append(append([]byte{}, data...), data...))
	got, err = plain.HashPair(data, data)
	require.NoError(t, err)
	assert.Equal(t, []byte(hex.EncodeToString(sum[:])), got)
}

func TestHashDataBytesAndStringAgree(t *testing.T) {
	for _, enc := range SupportedEncodings {
		for _, sec := range []bool{true, false} {
			e, err := NewHashEngine(SHA256, enc, sec)
			require.NoError(t, err)

			raw, err := enc.EncodeString(record)
			require.NoError(t, err)

			fromString, err := e.HashData(record)
			require.NoError(t, err)
			fromBytes, err := e.HashData(raw)
			require.NoError(t, err)
			assert.Equal(t, fromString, fromBytes, "encoding=%s security=%v", enc, sec)
		}
	}
}

func TestHashFileMatchesHashData(t *testing.T) {
	e := mustEngine(t, true)

	path := filepath.Join(t.TempDir(), "record.txt")
	require.NoError(t, os.WriteFile(path, []byte(record), 0o644))

	fromFile, err := e.HashFile(path)
	require.NoError(t, err)
	fromData, err := e.HashData(record)
	require.NoError(t, err)
	assert.Equal(t, fromData, fromFile)
}

func Test0ElemsHashPath(t *testing.T) {
	e := mustEngine(t, true)
	_, err := e.HashPath(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func Test1ElemHashPath(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)

	got, err := e.HashPath([]SignedDigest{{Sign: Left, Digest: d}}, 0)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func Test2ElemHashPath(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	want, err := e.HashPair(d, d)
	require.NoError(t, err)

	path := []SignedDigest{{Sign: Left, Digest: d}, {Sign: Right, Digest: d}}
	got0, err := e.HashPath(path, 0)
	require.NoError(t, err)
	got1, err := e.HashPath(path, 1)
	require.NoError(t, err)

	assert.Equal(t, want, got0)
	assert.Equal(t, want, got1)
}

func Test3ElemHashPathCase1(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	inner, err := e.HashPair(d, d)
	require.NoError(t, err)
	want, err := e.HashPair(inner, d)
	require.NoError(t, err)

	pathA := []SignedDigest{{Sign: Left, Digest: d}, {Sign: Left, Digest: d}, {Sign: Right, Digest: d}}
	gotA, err := e.HashPath(pathA, 0)
	require.NoError(t, err)
	assert.Equal(t, want, gotA)

	pathB := []SignedDigest{{Sign: Left, Digest: d}, {Sign: Right, Digest: d}, {Sign: Right, Digest: d}}
	gotB, err := e.HashPath(pathB, 1)
	require.NoError(t, err)
	assert.Equal(t, want, gotB)
}

func Test3ElemHashPathCase2(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	inner, err := e.HashPair(d, d)
	require.NoError(t, err)
	want, err := e.HashPair(d, inner)
	require.NoError(t, err)

	pathA := []SignedDigest{{Sign: Right, Digest: d}, {Sign: Right, Digest: d}, {Sign: Right, Digest: d}}
	gotA, err := e.HashPath(pathA, 2)
	require.NoError(t, err)
	assert.Equal(t, want, gotA)

	pathB := []SignedDigest{{Sign: Right, Digest: d}, {Sign: Left, Digest: d}, {Sign: Right, Digest: d}}
	gotB, err := e.HashPath(pathB, 1)
	require.NoError(t, err)
	assert.Equal(t, want, gotB)
}

func Test4ElemHashPathEdgeCase1(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	h1, err := e.HashPair(d, d)
	require.NoError(t, err)
	h2, err := e.HashPair(h1, d)
	require.NoError(t, err)
	want, err := e.HashPair(h2, d)
	require.NoError(t, err)

	path := []SignedDigest{
		{Sign: Left, Digest: d}, {Sign: Left, Digest: d},
		{Sign: Left, Digest: d}, {Sign: Right, Digest: d},
	}
	got, err := e.HashPath(path, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test4ElemHashPathEdgeCase2(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	h1, err := e.HashPair(d, d)
	require.NoError(t, err)
	h2, err := e.HashPair(d, h1)
	require.NoError(t, err)
	want, err := e.HashPair(d, h2)
	require.NoError(t, err)

	path := []SignedDigest{
		{Sign: Left, Digest: d}, {Sign: Right, Digest: d},
		{Sign: Right, Digest: d}, {Sign: Right, Digest: d},
	}
	got, err := e.HashPath(path, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// The start=1 reduction pivots direction twice: rightward into the h1
// merge, then leftward as the merged element inherits its consumed
// neighbor's -1 sign. A fold that resolves merged signs any other way
// produces hash_pair(d, hash_pair(hash_pair(d,d), d)) here instead.
func Test4ElemHashPathInterior(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)
	h1, err := e.HashPair(d, d)
	require.NoError(t, err)
	h2, err := e.HashPair(d, h1)
	require.NoError(t, err)
	want, err := e.HashPair(h2, d)
	require.NoError(t, err)

	path := []SignedDigest{
		{Sign: Left, Digest: d}, {Sign: Left, Digest: d},
		{Sign: Right, Digest: d}, {Sign: Right, Digest: d},
	}
	got, err := e.HashPath(path, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// Signs pointing off either end of the sequence fall back to the available
// neighbor with the operand roles swapped, rather than failing.
func TestHashPathBoundaryFlip(t *testing.T) {
	e := mustEngine(t, true)
	a, err := e.HashData("a")
	require.NoError(t, err)
	b, err := e.HashData("b")
	require.NoError(t, err)
	want, err := e.HashPair(a, b)
	require.NoError(t, err)

	leftward, err := e.HashPath([]SignedDigest{{Sign: Left, Digest: a}, {Sign: Left, Digest: b}}, 1)
	require.NoError(t, err)
	assert.Equal(t, want, leftward)

	rightward, err := e.HashPath([]SignedDigest{{Sign: Right, Digest: a}, {Sign: Right, Digest: b}}, 0)
	require.NoError(t, err)
	assert.Equal(t, want, rightward)
}

func TestHashPathStartOutOfRange(t *testing.T) {
	e := mustEngine(t, true)
	d, err := e.HashData("x")
	require.NoError(t, err)

	path := []SignedDigest{{Sign: Left, Digest: d}, {Sign: Right, Digest: d}}
	_, err = e.HashPath(path, 2)
	assert.Error(t, err)
	_, err = e.HashPath(path, -1)
	assert.Error(t, err)
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewHashEngine(Algorithm("md5"), EncodingUTF8, true)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestUnsupportedEncoding(t *testing.T) {
	_, err := NewHashEngine(SHA256, TextEncoding("shift-jis"), true)
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

func TestAlgorithmEncodingMatrix(t *testing.T) {
	for _, alg := range SupportedAlgorithms {
		for _, enc := range SupportedEncodings {
			for _, sec := range []bool{true, false} {
				e, err := NewHashEngine(alg, enc, sec)
				require.NoError(t, err)
				d, err := e.HashData(record)
				require.NoError(t, err, "algorithm=%s encoding=%s security=%v", alg, enc, sec)
				assert.NotEmpty(t, d)
			}
		}
	}
}

func TestSecurityModeSeparatesDigests(t *testing.T) {
	secure := mustEngine(t, true)
	plain := mustEngine(t, false)

	a, err := secure.HashData(record)
	require.NoError(t, err)
	b, err := plain.HashData(record)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	pa, err := secure.HashPair(a, a)
	require.NoError(t, err)
	pb, err := plain.HashPair(a, a)
	require.NoError(t, err)
	assert.NotEqual(t, pa, pb)
}
