package http

import (
	"unicode/utf8"

	"github.com/indigo-web/utils/uf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

type BodyKind uint8

const (
	TextBody BodyKind = iota
	BinaryBody
)

func (k BodyKind) String() string {
	if k == BinaryBody {
		return "binary"
	}

	return "text"
}

// Body is either a character string or raw bytes, never both. The zero value is an empty
// text body, which is also what an absent body is normalized to.
//
// Text bodies are transmitted as single-byte characters (ISO-8859-1), so the wire length of
// a text body always equals the number of its characters. Characters which can't be
// represented are replaced.
type Body struct {
	text   string
	binary []byte
	kind   BodyKind
}

// Text returns a textual body.
func Text(text string) Body {
	return Body{text: text, kind: TextBody}
}

// Binary returns a binary body. The slice is used without copying.
func Binary(b []byte) Body {
	if b == nil {
		b = []byte{}
	}

	return Body{binary: b, kind: BinaryBody}
}

func (b Body) Kind() BodyKind {
	return b.kind
}

func (b Body) IsText() bool {
	return b.kind == TextBody
}

func (b Body) IsBinary() bool {
	return b.kind == BinaryBody
}

// Text returns the characters of a textual body. The boolean is false for binary bodies.
func (b Body) Text() (string, bool) {
	return b.text, b.kind == TextBody
}

// Binary returns the bytes of a binary body. The boolean is false for textual bodies.
func (b Body) Binary() ([]byte, bool) {
	return b.binary, b.kind == BinaryBody
}

// Len returns the number of characters of a textual body, or the number of bytes of a
// binary one.
func (b Body) Len() int {
	if b.kind == BinaryBody {
		return len(b.binary)
	}

	return utf8.RuneCountInString(b.text)
}

func (b Body) Empty() bool {
	return b.Len() == 0
}

// Bytes returns the body as it's transmitted over the wire.
func (b Body) Bytes() []byte {
	if b.kind == BinaryBody {
		return b.binary
	}

	return EncodeText(b.text)
}

// String returns the textual body as is, or the binary body decoded as single-byte
// characters.
func (b Body) String() string {
	if b.kind == BinaryBody {
		return DecodeText(b.binary)
	}

	return b.text
}

// DecodeText decodes raw bytes as single-byte (ISO-8859-1) characters. Every byte is
// decoded into exactly one character.
func DecodeText(raw []byte) string {
	if isASCII(raw) {
		return string(raw)
	}

	// decoding ISO-8859-1 can't fail, as every byte maps to a character
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return uf.B2S(decoded)
}

// EncodeText encodes characters into single-byte (ISO-8859-1) representation. Every
// character is encoded into exactly one byte.
func EncodeText(text string) []byte {
	if isASCII(uf.S2B(text)) {
		return []byte(text)
	}

	encoded, _ := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).String(text)
	return uf.S2B(encoded)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
