package model

import (
	"encoding/json"

	"ethwire/internal/codec"
)

type NodeInfo struct {
	Enode      string          `json:"enode"`
	ENR        string          `json:"enr"`
	ID         string          `json:"id"`
	IP         string          `json:"ip"`
	ListenAddr string          `json:"listenAddr"`
	Name       string          `json:"name"`
	Ports      *NodePorts      `json:"ports"`
	Protocols  json.RawMessage `json:"protocols"`

	Extra map[string]json.RawMessage `json:"-"`
}

type NodePorts struct {
	Discovery uint64 `json:"discovery"`
	Listener  uint64 `json:"listener"`

	Extra map[string]json.RawMessage `json:"-"`
}

// PeerInfo is one entry of admin_peers.
type PeerInfo struct {
	Enode     *string         `json:"enode"`
	ENR       *string         `json:"enr"`
	ID        *string         `json:"id"`
	Name      *string         `json:"name"`
	Caps      []string        `json:"caps"`
	Network   *PeerNetwork    `json:"network"`
	Protocols json.RawMessage `json:"protocols"`

	Extra map[string]json.RawMessage `json:"-"`
}

type PeerNetwork struct {
	LocalAddress  *string `json:"localAddress"`
	RemoteAddress *string `json:"remoteAddress"`
	Inbound       *bool   `json:"inbound"`
	Trusted       *bool   `json:"trusted"`
	Static        *bool   `json:"static"`

	Extra map[string]json.RawMessage `json:"-"`
}

// FeeHistory is the eth_feeHistory result. Reward is indexed by block, then by
// requested percentile.
type FeeHistory struct {
	OldestBlock       *codec.BlockNumber `json:"oldestBlock"`
	BaseFeePerGas     []*codec.Wei       `json:"baseFeePerGas"`
	GasUsedRatio      []float64          `json:"gasUsedRatio"`
	Reward            [][]*codec.Wei     `json:"reward"`
	BaseFeePerBlobGas []*codec.Wei       `json:"baseFeePerBlobGas"`
	BlobGasUsedRatio  []float64          `json:"blobGasUsedRatio"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SyncStatus is the progress object reported while a node is syncing. Client
// specific counters end up in Extra.
type SyncStatus struct {
	StartingBlock codec.BlockNumber `json:"startingBlock"`
	CurrentBlock  codec.BlockNumber `json:"currentBlock"`
	HighestBlock  codec.BlockNumber `json:"highestBlock"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SyncingEvent is the result of eth_syncing and of the syncing subscription.
// Status is nil when the node is not syncing.
type SyncingEvent struct {
	Syncing *bool       `json:"syncing"`
	Status  *SyncStatus `json:"status"`

	Extra map[string]json.RawMessage `json:"-"`
}

// IsSyncing reports whether the node is syncing.
func (e *SyncingEvent) IsSyncing() bool {
	if e == nil {
		return false
	}
	if e.Syncing != nil {
		return *e.Syncing
	}
	return e.Status != nil
}
