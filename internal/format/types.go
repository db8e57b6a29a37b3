package format

import (
	"reflect"

	"ethwire/internal/model"
	"ethwire/internal/schema"
)

func defaultTypes() map[schema.Kind]reflect.Type {
	samples := map[schema.Kind]any{
		schema.Block:                model.Block{},
		schema.LegacyTx:             model.LegacyTx{},
		schema.AccessListTx:         model.AccessListTx{},
		schema.DynamicFeeTx:         model.DynamicFeeTx{},
		schema.BlobTx:               model.BlobTx{},
		schema.SetCodeTx:            model.SetCodeTx{},
		schema.UnknownTx:            model.UnknownTx{},
		schema.SignedTx:             model.SignedTx{},
		schema.Receipt:              model.Receipt{},
		schema.Log:                  model.Log{},
		schema.Withdrawal:           model.Withdrawal{},
		schema.AccessListEntry:      model.AccessListEntry{},
		schema.Authorization:        model.Authorization{},
		schema.MerkleProof:          model.MerkleProof{},
		schema.StorageProof:         model.StorageProof{},
		schema.TxPoolContent:        model.TxPoolContent{},
		schema.TxPoolInspect:        model.TxPoolInspect{},
		schema.TxPoolStatus:         model.TxPoolStatus{},
		schema.NodeInfo:             model.NodeInfo{},
		schema.NodePorts:            model.NodePorts{},
		schema.PeerInfo:             model.PeerInfo{},
		schema.PeerNetwork:          model.PeerNetwork{},
		schema.FeeHistory:           model.FeeHistory{},
		schema.SyncStatus:           model.SyncStatus{},
		schema.SyncingEvent:         model.SyncingEvent{},
		schema.CallFrame:            model.CallFrame{},
		schema.ParityTrace:          model.ParityTrace{},
		schema.TraceAction:          model.TraceAction{},
		schema.TraceResult:          model.TraceResult{},
		schema.OpcodeTrace:          model.OpcodeTrace{},
		schema.StructLog:            model.StructLog{},
		schema.BlockTraceEntry:      model.BlockTraceEntry{},
		schema.TxParams:             model.TxParams{},
		schema.FilterParams:         model.FilterParams{},
		schema.StateOverrideAccount: model.StateOverrideAccount{},
		schema.TraceConfig:          model.TraceConfig{},
		schema.AccessListResult:     model.AccessListResult{},
	}

	out := make(map[schema.Kind]reflect.Type, len(samples))
	for kind, sample := range samples {
		out[kind] = reflect.TypeOf(sample)
	}
	return out
}
