package merkle

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// TextEncoding names one of the text encodings a hash engine may be
// configured with. Hex digests are produced as ASCII text and then
// transcoded into this encoding before being handed back to the caller, so
// every digest the engine returns is a byte sequence in exactly this
// encoding, never raw binary.
type TextEncoding string

const (
	EncodingUTF8   TextEncoding = "utf-8"
	EncodingUTF16  TextEncoding = "utf-16"
	EncodingUTF32  TextEncoding = "utf-32"
	EncodingASCII  TextEncoding = "ascii"
	EncodingLatin1 TextEncoding = "latin-1"
)

// SupportedEncodings enumerates every TextEncoding this build accepts.
var SupportedEncodings = []TextEncoding{
	EncodingUTF8, EncodingUTF16, EncodingUTF32, EncodingASCII, EncodingLatin1,
}

func (e TextEncoding) valid() bool {
	for _, s := range SupportedEncodings {
		if s == e {
			return true
		}
	}
	return false
}

// codec resolves the x/text encoding backing this TextEncoding. utf-32 has
// no x/text implementation and is handled separately (see encodeUTF32),
// ascii is checked for 7-bit range and otherwise passed through as-is.
//
// The multi-byte encodings are little-endian with a byte order mark on
// every encoded text, so the 0x00/0x01 security prefixes and the hex
// digest text produce the same byte sequences the endianness-unqualified
// utf-16/utf-32 codecs emit. A digest under such an encoding therefore
// starts with the BOM, and that is part of what gets hashed upward.
func (e TextEncoding) codec() (encoding.Encoding, error) {
	switch e {
	case EncodingUTF8, EncodingASCII:
		return encoding.Nop, nil
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case EncodingLatin1:
		return charmap.ISO8859_1, nil
	default:
		return nil, unsupportedParameterf("encoding %q", string(e))
	}
}

// EncodeString transcodes s (hex digest text, a single control byte, or a
// record string handed to HashData) into this encoding's byte
// representation.
func (e TextEncoding) EncodeString(s string) ([]byte, error) {
	if !e.valid() {
		return nil, unsupportedParameterf("encoding %q", string(e))
	}

	if e == EncodingUTF32 {
		return encodeUTF32(s), nil
	}

	if e == EncodingASCII {
		for _, r := range s {
			if r > 127 {
				return nil, unsupportedParameterf("rune %q out of ascii range", r)
			}
		}
	}

	codec, err := e.codec()
	if err != nil {
		return nil, err
	}
	return codec.NewEncoder().Bytes([]byte(s))
}

// DecodeString reverses EncodeString, recovering the original text from a
// digest byte sequence. Used by proofjson to render a digest as JSON text.
func (e TextEncoding) DecodeString(b []byte) (string, error) {
	if !e.valid() {
		return "", unsupportedParameterf("encoding %q", string(e))
	}

	if e == EncodingUTF32 {
		return decodeUTF32(b)
	}

	codec, err := e.codec()
	if err != nil {
		return "", err
	}
	out, err := codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, "decode digest text")
	}
	return string(out), nil
}

var (
	utf32BOMLittle = []byte{0xff, 0xfe, 0x00, 0x00}
	utf32BOMBig    = []byte{0x00, 0x00, 0xfe, 0xff}
)

// encodeUTF32 is a minimal UTF-32 encoder, little-endian with a leading
// byte order mark to match the codec() convention above. golang.org/x/text
// ships no UTF-32 codec, so this one concern is implemented directly
// against the standard library.
func encodeUTF32(s string) []byte {
	out := make([]byte, 0, 4+len(s)*4)
	out = append(out, utf32BOMLittle...)
	var buf [4]byte
	for _, r := range s {
		binary.LittleEndian.PutUint32(buf[:], uint32(r))
		out = append(out, buf[:]...)
	}
	return out
}

func decodeUTF32(b []byte) (string, error) {
	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case len(b) >= 4 && bytes.Equal(b[:4], utf32BOMLittle):
		b = b[4:]
	case len(b) >= 4 && bytes.Equal(b[:4], utf32BOMBig):
		order = binary.BigEndian
		b = b[4:]
	}
	if len(b)%4 != 0 {
		return "", unsupportedParameterf("malformed utf-32 byte length %d", len(b))
	}
	var sb strings.Builder
	for i := 0; i < len(b); i += 4 {
		sb.WriteRune(rune(order.Uint32(b[i : i+4])))
	}
	return sb.String(), nil
}
