package schema

// Kind names a record shape exchanged with a node.
type Kind string

const (
	Block        Kind = "Block"
	Transaction  Kind = "Transaction"
	LegacyTx     Kind = "LegacyTx"
	AccessListTx Kind = "AccessListTx"
	DynamicFeeTx Kind = "DynamicFeeTx"
	BlobTx       Kind = "BlobTx"
	SetCodeTx    Kind = "SetCodeTx"
	UnknownTx    Kind = "UnknownTx"
	SignedTx     Kind = "SignedTx"
	Receipt      Kind = "Receipt"
	Log          Kind = "Log"
	Withdrawal   Kind = "Withdrawal"

	AccessListEntry Kind = "AccessListEntry"
	Authorization   Kind = "Authorization"
	MerkleProof     Kind = "MerkleProof"
	StorageProof    Kind = "StorageProof"

	TxPoolContent Kind = "TxPoolContent"
	TxPoolInspect Kind = "TxPoolInspect"
	TxPoolStatus  Kind = "TxPoolStatus"

	NodeInfo    Kind = "NodeInfo"
	NodePorts   Kind = "NodePorts"
	PeerInfo    Kind = "PeerInfo"
	PeerNetwork Kind = "PeerNetwork"

	FeeHistory   Kind = "FeeHistory"
	SyncStatus   Kind = "SyncStatus"
	SyncingEvent Kind = "SyncingEvent"

	CallFrame       Kind = "CallFrame"
	ParityTrace     Kind = "ParityTrace"
	TraceAction     Kind = "TraceAction"
	TraceResult     Kind = "TraceResult"
	OpcodeTrace     Kind = "OpcodeTrace"
	StructLog       Kind = "StructLog"
	BlockTraceEntry Kind = "BlockTraceEntry"

	TxParams             Kind = "TxParams"
	FilterParams         Kind = "FilterParams"
	StateOverrideAccount Kind = "StateOverrideAccount"
	TraceConfig          Kind = "TraceConfig"
	AccessListResult     Kind = "AccessListResult"
)
