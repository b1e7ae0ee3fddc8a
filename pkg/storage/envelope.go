// Package storage persists the encrypted vault envelope: a versioned
// binary framing of (salt, nonce, ciphertext), written atomically so a
// crash mid-write never leaves a half-written vault behind.
package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// magic identifies a ward vault file.
var magic = [4]byte{'W', 'A', 'R', 'D'}

// FormatVersion is the on-disk envelope layout version. Any layout
// change must either stay backward-readable or bump this.
const FormatVersion uint16 = 1

// ErrBadEnvelope is returned when a vault file does not carry a
// well-formed envelope.
var ErrBadEnvelope = errors.New("malformed vault envelope")

// Envelope is the persisted encrypted representation of the vault.
type Envelope struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// Layout: magic (4) | version (uint16) | salt len (uint16) | salt |
// nonce len (uint16) | nonce | ciphertext (rest of file).

// Marshal encodes the envelope into its binary layout.
func (e *Envelope) Marshal() ([]byte, error) {
	if len(e.Salt) > 0xffff || len(e.Nonce) > 0xffff {
		return nil, fmt.Errorf("%w: oversized salt or nonce", ErrBadEnvelope)
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	binary.Write(&buf, binary.BigEndian, FormatVersion)
	binary.Write(&buf, binary.BigEndian, uint16(len(e.Salt)))
	buf.Write(e.Salt)
	binary.Write(&buf, binary.BigEndian, uint16(len(e.Nonce)))
	buf.Write(e.Nonce)
	buf.Write(e.Ciphertext)
	return buf.Bytes(), nil
}

// UnmarshalEnvelope decodes the binary layout back into an envelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	r := bytes.NewReader(data)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil || gotMagic != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadEnvelope)
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrBadEnvelope)
	}
	if version > FormatVersion {
		return nil, fmt.Errorf("%w: version %d is newer than supported version %d", ErrBadEnvelope, version, FormatVersion)
	}

	salt, err := readChunk(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated salt", ErrBadEnvelope)
	}
	nonce, err := readChunk(r)
	if err != nil {
		return nil, fmt.Errorf("%w: truncated nonce", ErrBadEnvelope)
	}

	ciphertext := make([]byte, r.Len())
	if _, err := io.ReadFull(r, ciphertext); err != nil {
		return nil, fmt.Errorf("%w: truncated ciphertext", ErrBadEnvelope)
	}

	return &Envelope{Salt: salt, Nonce: nonce, Ciphertext: ciphertext}, nil
}

func readChunk(r *bytes.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	chunk := make([]byte, n)
	if _, err := io.ReadFull(r, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}
