// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package entries implements the entries codec (component C8) and the
// eight NFT operation builders (component C7). Every operation's output
// is a length-prefixed, field-tagged binary record with a fixed field
// order: a schema version byte, an operation tag, key vectors, parallel
// value vectors, one or two compiled Merkle proofs, and a short ASCII
// action annotation (spec §4.8). Builders follow the five-phase
// template of spec §4.7: validate & fetch, derive leaves, critical
// section under the owner lock, prove, assemble.
package entries

import (
	"encoding/binary"

	"github.com/nervina-labs/cota-aggregator-go/errortypes"
	"github.com/nervina-labs/cota-aggregator-go/smt"
)

// Version is the schema version byte written as every blob's first
// byte.
const Version byte = 1

// Tag identifies which operation an entries blob encodes.
type Tag byte

const (
	TagDefine Tag = 1 + iota
	TagMint
	TagWithdraw
	TagClaim
	TagUpdate
	TagTransfer
	TagClaimUpdate
	TagTransferUpdate
	TagSubkey
	TagSocial
)

// writer accumulates an entries blob field by field, in declaration
// order.
type writer struct {
	buf []byte
}

func newWriter(tag Tag) *writer {
	w := &writer{buf: make([]byte, 0, 256)}
	w.buf = append(w.buf, Version, byte(tag))
	return w
}

func (w *writer) putUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) putUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// put32Vector appends a length-prefixed array of fixed-width 32-byte
// records — the shape of every key and value vector field (spec §4.8).
func (w *writer) put32Vector(items [][32]byte) {
	w.putUint32(uint32(len(items)))
	for _, it := range items {
		w.buf = append(w.buf, it[:]...)
	}
}

// putBytes appends a length-prefixed opaque byte string — used for
// compiled proofs.
func (w *writer) putBytes(b []byte) {
	w.putUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// putAction appends the short ASCII action annotation, length-prefixed
// with a 16-bit count since it is always small.
func (w *writer) putAction(action string) {
	w.putUint16(uint16(len(action)))
	w.buf = append(w.buf, action...)
}

func (w *writer) bytes() []byte { return w.buf }

// reader walks an entries blob field by field in the same order it was
// written, used by the witness sub-proof extractor (component C10) to
// recover an embedded entries blob's leaf set.
type reader struct {
	buf []byte
	pos int
}

func newReader(blob []byte) (*reader, Tag, error) {
	if len(blob) < 2 {
		return nil, 0, errortypes.NewWitnessParseError("entries blob truncated before header")
	}
	if blob[0] != Version {
		return nil, 0, errortypes.NewWitnessParseError("unsupported entries schema version")
	}
	return &reader{buf: blob, pos: 2}, Tag(blob[1]), nil
}

func (r *reader) requireRemaining(n int) error {
	if r.pos+n > len(r.buf) {
		return errortypes.NewWitnessParseError("entries blob truncated")
	}
	return nil
}

func (r *reader) getUint32() (uint32, error) {
	if err := r.requireRemaining(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) getUint16() (uint16, error) {
	if err := r.requireRemaining(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) get32Vector() ([][32]byte, error) {
	n, err := r.getUint32()
	if err != nil {
		return nil, err
	}
	if err := r.requireRemaining(int(n) * 32); err != nil {
		return nil, err
	}
	out := make([][32]byte, n)
	for i := range out {
		copy(out[i][:], r.buf[r.pos:r.pos+32])
		r.pos += 32
	}
	return out, nil
}

func (r *reader) getBytes() ([]byte, error) {
	n, err := r.getUint32()
	if err != nil {
		return nil, err
	}
	if err := r.requireRemaining(int(n)); err != nil {
		return nil, err
	}
	out := append([]byte(nil), r.buf[r.pos:r.pos+int(n)]...)
	r.pos += int(n)
	return out, nil
}

func (r *reader) getAction() (string, error) {
	n, err := r.getUint16()
	if err != nil {
		return "", err
	}
	if err := r.requireRemaining(int(n)); err != nil {
		return "", err
	}
	out := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return out, nil
}

func (r *reader) atEnd() bool { return r.pos == len(r.buf) }

func toKeyVec(keys []smt.Key32) [][32]byte {
	out := make([][32]byte, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}

func toValueVec(values []smt.Value32) [][32]byte {
	out := make([][32]byte, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func fromVec(raw [][32]byte) []smt.Key32 {
	out := make([]smt.Key32, len(raw))
	for i, r := range raw {
		out[i] = r
	}
	return out
}
