// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errortypes defines the error kinds of spec §7 as small structs
// implementing error, constructed via constructor functions, so callers
// can errors.As on kind rather than matching on an error string.
package errortypes

import "fmt"

// Kind identifies which of the spec §7 error categories an error belongs
// to.
type Kind uint8

const (
	KindRequestParamInvalid Kind = iota
	KindPreconditionMissing
	KindWitnessParse
	KindSMT
	KindSMTProof
	KindStore
	KindChainRPC
	KindIndexer
)

func (k Kind) String() string {
	switch k {
	case KindRequestParamInvalid:
		return "RequestParamInvalid"
	case KindPreconditionMissing:
		return "PreconditionMissing"
	case KindWitnessParse:
		return "WitnessParseError"
	case KindSMT:
		return "SMTError"
	case KindSMTProof:
		return "SMTProofError"
	case KindStore:
		return "StoreError"
	case KindChainRPC:
		return "ChainRPCError"
	case KindIndexer:
		return "IndexerError"
	default:
		return "UnknownError"
	}
}

// RequestParamSubKind further classifies a RequestParamInvalid error.
type RequestParamSubKind uint8

const (
	SubKindNotFound RequestParamSubKind = iota
	SubKindNotHex
	SubKindBadLength
	SubKindBadType
)

func (s RequestParamSubKind) String() string {
	switch s {
	case SubKindNotFound:
		return "not-found"
	case SubKindNotHex:
		return "not-hex"
	case SubKindBadLength:
		return "bad-length"
	case SubKindBadType:
		return "bad-type"
	default:
		return "unknown"
	}
}

// Error is the common shape of every error this package produces: a kind,
// a human-readable description, and an optional wrapped cause.
type Error struct {
	Kind        Kind
	Description string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func (e *Error) Unwrap() error { return e.Cause }

// RequestParamInvalid reports a malformed RPC parameter: not found, not
// hex, wrong length, or wrong type.
type RequestParamInvalid struct {
	*Error
	Field   string
	SubKind RequestParamSubKind
}

func NewRequestParamInvalid(field string, sub RequestParamSubKind, description string) *RequestParamInvalid {
	return &RequestParamInvalid{
		Error:   &Error{Kind: KindRequestParamInvalid, Description: description},
		Field:   field,
		SubKind: sub,
	}
}

// PreconditionSubKind further classifies a PreconditionMissing error.
type PreconditionSubKind uint8

const (
	SubKindCotaIDHasNotDefined PreconditionSubKind = iota
	SubKindHasNotWithdrawn
	SubKindHasNotHeld
)

func (s PreconditionSubKind) String() string {
	switch s {
	case SubKindCotaIDHasNotDefined:
		return "CotaIdHasNotDefined"
	case SubKindHasNotWithdrawn:
		return "HasNotWithdrawn"
	case SubKindHasNotHeld:
		return "HasNotHeld"
	default:
		return "unknown"
	}
}

// PreconditionMissing reports that an operation builder's prerequisite
// row (a Define, Hold, or Withdrawal) was absent from the relational
// index (spec §4.7, each builder's "Validate & fetch" phase).
type PreconditionMissing struct {
	*Error
	SubKind    PreconditionSubKind
	CotaID     []byte
	TokenIndex uint32
}

func NewPreconditionMissing(sub PreconditionSubKind, cotaID []byte, tokenIndex uint32) *PreconditionMissing {
	return &PreconditionMissing{
		Error:      &Error{Kind: KindPreconditionMissing, Description: sub.String()},
		SubKind:    sub,
		CotaID:     cotaID,
		TokenIndex: tokenIndex,
	}
}

// NewWitnessParseError reports that the witness sub-proof extractor
// (component C10) could not find a matching witness or match the
// requested (cota_id, token_index) pairs. Fatal for the chained-transfer
// flow that requested it; the caller must retry with different input.
func NewWitnessParseError(description string) *Error {
	return &Error{Kind: KindWitnessParse, Description: description}
}

// NewSMTError reports an inconsistency in the sparse Merkle tree itself
// (component C4) — typically a missing branch node for a claimed root.
// It propagates to the caller as is: no caller retries the operation or
// triggers a history rebuild (component C5) on receiving it.
func NewSMTError(cause error) *Error {
	return &Error{Kind: KindSMT, Description: "sparse Merkle tree inconsistency", Cause: cause}
}

// NewSMTProofError reports a failure compiling or verifying a Merkle
// proof after an otherwise-successful tree update.
func NewSMTProofError(description string) *Error {
	return &Error{Kind: KindSMTProof, Description: description}
}

// NewStoreError reports a persistent-store failure (component C3): a
// corrupt leaf size, a failed batch write, or similar. Per spec §7 the
// in-flight transaction is aborted and the owner lock released before
// this propagates.
func NewStoreError(description string, cause error) *Error {
	return &Error{Kind: KindStore, Description: description, Cause: cause}
}

// NewChainRPCError reports a failure calling the CKB node RPC.
func NewChainRPCError(description string, cause error) *Error {
	return &Error{Kind: KindChainRPC, Description: description, Cause: cause}
}

// NewIndexerError reports a failure calling the CKB indexer RPC.
func NewIndexerError(description string, cause error) *Error {
	return &Error{Kind: KindIndexer, Description: description, Cause: cause}
}
