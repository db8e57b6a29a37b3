package model

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// CallFrame is a callTracer frame. Calls nests sub-frames.
type CallFrame struct {
	Type         *string         `json:"type"`
	From         *common.Address `json:"from"`
	To           *common.Address `json:"to"`
	Value        *codec.Wei      `json:"value"`
	Gas          *uint64         `json:"gas"`
	GasUsed      *uint64         `json:"gasUsed"`
	Input        codec.HexBlob   `json:"input"`
	Output       codec.HexBlob   `json:"output"`
	Error        *string         `json:"error"`
	RevertReason *string         `json:"revertReason"`
	Calls        []CallFrame     `json:"calls"`
	Logs         json.RawMessage `json:"logs"`

	Extra map[string]json.RawMessage `json:"-"`
}

// OpcodeTrace is the default struct logger output of debug_trace*.
type OpcodeTrace struct {
	Gas         *uint64     `json:"gas"`
	Failed      *bool       `json:"failed"`
	ReturnValue *string     `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`

	Extra map[string]json.RawMessage `json:"-"`
}

type StructLog struct {
	PC      *uint64         `json:"pc"`
	Op      *string         `json:"op"`
	Gas     *uint64         `json:"gas"`
	GasCost *uint64         `json:"gasCost"`
	Depth   *uint64         `json:"depth"`
	Stack   []string        `json:"stack"`
	Memory  []string        `json:"memory"`
	Storage json.RawMessage `json:"storage"`
	Refund  *uint64         `json:"refund"`
	Error   *string         `json:"error"`

	Extra map[string]json.RawMessage `json:"-"`
}

// BlockTraceEntry is one element of debug_traceBlockBy*. Result is a *CallFrame,
// an *OpcodeTrace, or raw JSON for other tracers.
type BlockTraceEntry struct {
	TxHash common.Hash `json:"txHash"`
	Result any         `json:"result"`

	Extra map[string]json.RawMessage `json:"-"`
}

// ParityTrace is one entry of trace_transaction / trace_block.
type ParityTrace struct {
	Action              *TraceAction `json:"action"`
	Result              *TraceResult `json:"result"`
	Error               *string      `json:"error"`
	BlockHash           *common.Hash `json:"blockHash"`
	BlockNumber         *uint64      `json:"blockNumber"`
	Subtraces           *uint64      `json:"subtraces"`
	TraceAddress        []uint64     `json:"traceAddress"`
	TransactionHash     *common.Hash `json:"transactionHash"`
	TransactionPosition *uint64      `json:"transactionPosition"`
	Type                *string      `json:"type"`

	Extra map[string]json.RawMessage `json:"-"`
}

type TraceAction struct {
	CallType      *string         `json:"callType"`
	From          *common.Address `json:"from"`
	To            *common.Address `json:"to"`
	Value         *codec.Wei      `json:"value"`
	Gas           *uint64         `json:"gas"`
	Input         codec.HexBlob   `json:"input"`
	Init          codec.HexBlob   `json:"init"`
	Address       *common.Address `json:"address"`
	RefundAddress *common.Address `json:"refundAddress"`
	Balance       *codec.Wei      `json:"balance"`
	Author        *common.Address `json:"author"`
	RewardType    *string         `json:"rewardType"`

	Extra map[string]json.RawMessage `json:"-"`
}

type TraceResult struct {
	GasUsed *uint64         `json:"gasUsed"`
	Output  codec.HexBlob   `json:"output"`
	Address *common.Address `json:"address"`
	Code    codec.HexBlob   `json:"code"`

	Extra map[string]json.RawMessage `json:"-"`
}
