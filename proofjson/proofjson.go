// Package proofjson serializes and deserializes merkle.Proof values as a
// JSON document with a header/body split. It is a collaborator package,
// kept deliberately separate from the core merkle package so the tree and
// verifier never touch a wire format.
//
// Keys are laid out in sorted order and documents are indented with four
// spaces, so re-serializing a decoded document reproduces it byte for
// byte.
package proofjson

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/arriqaaq/merkle"
)

type pathEntry struct {
	sign int
	text string
}

func (p pathEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.sign, p.text})
}

func (p *pathEntry) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.sign); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.text)
}

// Field order within each struct is alphabetical: encoding/json emits
// struct fields in declaration order, and the wire contract wants sorted
// keys.
type header struct {
	CreationMoment string `json:"creation_moment"`
	Encoding       string `json:"encoding"`
	Generation     bool   `json:"generation"`
	HashType       string `json:"hash_type"`
	Provider       string `json:"provider"`
	Security       bool   `json:"security"`
	Status         *bool  `json:"status"`
	Timestamp      int64  `json:"timestamp"`
	UUID           string `json:"uuid"`
}

type body struct {
	ProofIndex int         `json:"proof_index"`
	ProofPath  []pathEntry `json:"proof_path"`
}

type document struct {
	Body   body   `json:"body"`
	Header header `json:"header"`
}

// Encode serializes a Proof: header/body, with proof_path entries as
// [sign, text] pairs where text is the digest rendered back from the
// proof's own text encoding.
func Encode(p *merkle.Proof) ([]byte, error) {
	enc := p.Header.Encoding

	entries := make([]pathEntry, len(p.Body.Path))
	for i, sd := range p.Body.Path {
		text, err := enc.DecodeString(sd.Digest)
		if err != nil {
			return nil, errors.Wrap(err, "decode path digest")
		}
		entries[i] = pathEntry{sign: int(sd.Sign), text: text}
	}

	var status *bool
	switch p.Header.Status {
	case merkle.StatusValid:
		v := true
		status = &v
	case merkle.StatusInvalid:
		v := false
		status = &v
	}

	doc := document{
		Header: header{
			UUID:           p.Header.UUID,
			Timestamp:      p.Header.Timestamp,
			CreationMoment: p.Header.CreationMoment,
			Generation:     p.Header.Generation,
			Provider:       p.Header.Provider,
			HashType:       string(p.Header.Algorithm),
			Encoding:       string(p.Header.Encoding),
			Security:       p.Header.Security,
			Status:         status,
		},
		Body: body{
			ProofIndex: p.Body.Offset,
			ProofPath:  entries,
		},
	}

	return json.MarshalIndent(doc, "", "    ")
}

// Decode reconstructs a Proof from a document previously produced by
// Encode. Decoded proofs verify exactly as the originals: audit and
// consistency proofs alike carry everything the verifier folds over in
// proof_index and proof_path.
func Decode(data []byte) (*merkle.Proof, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(merkle.ErrInvalidProof, err.Error())
	}

	enc := merkle.TextEncoding(doc.Header.Encoding)

	path := make([]merkle.SignedDigest, len(doc.Body.ProofPath))
	for i, e := range doc.Body.ProofPath {
		digest, err := enc.EncodeString(e.text)
		if err != nil {
			return nil, errors.Wrap(err, "encode path digest")
		}
		path[i] = merkle.SignedDigest{Sign: merkle.Sign(e.sign), Digest: digest}
	}
	if len(path) == 0 {
		path = nil
	}

	status := merkle.StatusUnknown
	if doc.Header.Status != nil {
		if *doc.Header.Status {
			status = merkle.StatusValid
		} else {
			status = merkle.StatusInvalid
		}
	}

	proof := &merkle.Proof{
		Header: merkle.ProofHeader{
			UUID:           doc.Header.UUID,
			Timestamp:      doc.Header.Timestamp,
			CreationMoment: doc.Header.CreationMoment,
			Generation:     doc.Header.Generation,
			Provider:       doc.Header.Provider,
			Algorithm:      merkle.Algorithm(doc.Header.HashType),
			Encoding:       enc,
			Security:       doc.Header.Security,
			Status:         status,
		},
		Body: merkle.ProofBody{
			Offset: doc.Body.ProofIndex,
			Path:   path,
		},
	}
	return proof, nil
}
