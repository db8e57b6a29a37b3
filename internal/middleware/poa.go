package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"ethwire/internal/model"
)

// vanityLength is the extraData size allowed on non-PoA chains.
const vanityLength = 32

// ProofOfAuthorityKey holds the untrimmed extraData of PoA blocks in
// Block.Extra.
const ProofOfAuthorityKey = "proofOfAuthorityData"

var blockMethods = map[string]bool{
	"eth_getBlockByNumber":              true,
	"eth_getBlockByHash":                true,
	"eth_getUncleByBlockNumberAndIndex": true,
	"eth_getUncleByBlockHashAndIndex":   true,
}

// ExtraDataLengthError reports a block whose extraData is longer than 32 bytes,
// which usually means the node runs a proof-of-authority chain.
type ExtraDataLengthError struct {
	Method string
	Length int
}

func (e *ExtraDataLengthError) Error() string {
	return fmt.Sprintf("%s: extraData is %d bytes, expected at most %d; add the PoA trimming stage for proof-of-authority chains",
		e.Method, e.Length, vanityLength)
}

func blockResult(req *Request, result any) (*model.Block, bool) {
	if !blockMethods[req.Method] {
		return nil, false
	}
	block, ok := result.(*model.Block)
	return block, ok && block != nil
}

// PoAValidator rejects blocks with oversized extraData.
type PoAValidator struct{ Base }

func NewPoAValidator() *PoAValidator { return &PoAValidator{} }

func (*PoAValidator) Name() string { return "poa-validator" }

func (*PoAValidator) OnResponse(_ context.Context, req *Request, result any) (any, error) {
	block, ok := blockResult(req, result)
	if !ok {
		return result, nil
	}
	if n := len(block.ExtraData); n > vanityLength {
		return nil, &ExtraDataLengthError{Method: req.Method, Length: n}
	}
	return result, nil
}

// PoATrimmer cuts extraData down to its 32-byte vanity and keeps the full
// value under Extra["proofOfAuthorityData"].
type PoATrimmer struct{ Base }

func NewPoATrimmer() *PoATrimmer { return &PoATrimmer{} }

func (*PoATrimmer) Name() string { return "poa-trimmer" }

func (*PoATrimmer) OnResponse(_ context.Context, req *Request, result any) (any, error) {
	block, ok := blockResult(req, result)
	if !ok || len(block.ExtraData) <= vanityLength {
		return result, nil
	}
	full, err := json.Marshal(block.ExtraData.String())
	if err != nil {
		return nil, err
	}
	if block.Extra == nil {
		block.Extra = make(map[string]json.RawMessage, 1)
	}
	block.Extra[ProofOfAuthorityKey] = full
	block.ExtraData = block.ExtraData[:vanityLength:vanityLength]
	return block, nil
}
