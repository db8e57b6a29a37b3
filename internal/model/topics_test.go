package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sig   = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	hashA = common.HexToHash("0x0a")
	hashB = common.HexToHash("0x0b")
	hashC = common.HexToHash("0x0c")
)

func TestTopicFilterAndOr(t *testing.T) {
	f, err := ParseTopicFilter([]any{sig.Hex(), nil, []any{hashA.Hex(), hashB.Hex()}})
	require.NoError(t, err)
	require.Len(t, f, 3)

	tests := []struct {
		name   string
		topics []common.Hash
		want   bool
	}{
		{name: "topic2 is A", topics: []common.Hash{sig, hashC, hashA}, want: true},
		{name: "topic2 is B", topics: []common.Hash{sig, hashA, hashB}, want: true},
		{name: "topic2 not in set", topics: []common.Hash{sig, hashA, hashC}, want: false},
		{name: "wrong topic0", topics: []common.Hash{hashA, hashA, hashA}, want: false},
		{name: "too few topics", topics: []common.Hash{sig, hashA}, want: false},
		{name: "extra topics ignored", topics: []common.Hash{sig, hashA, hashB, hashC}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Matches(tt.topics))
		})
	}
}

func TestTopicFilterNestingChangesMeaning(t *testing.T) {
	// [[A, B]]: topic0 is A or B.
	orFirst, err := ParseTopicFilter([]any{[]any{hashA, hashB}})
	require.NoError(t, err)
	// [A, B]: topic0 is A and topic1 is B.
	andFirst, err := ParseTopicFilter([]any{hashA, hashB})
	require.NoError(t, err)

	topics := []common.Hash{hashB, hashC}
	assert.True(t, orFirst.Matches(topics))
	assert.False(t, andFirst.Matches(topics))

	topics = []common.Hash{hashA, hashB}
	assert.True(t, orFirst.Matches(topics))
	assert.True(t, andFirst.Matches(topics))
}

func TestParseTopicFilterRejectsDeepNesting(t *testing.T) {
	_, err := ParseTopicFilter([]any{[]any{[]any{hashA.Hex()}}})
	var tfErr *TopicFilterError
	require.ErrorAs(t, err, &tfErr)
	assert.Equal(t, 0, tfErr.Position)

	_, err = ParseTopicFilter([]any{nil, []any{hashA.Hex(), nil}})
	require.ErrorAs(t, err, &tfErr)
	assert.Equal(t, 1, tfErr.Position)

	_, err = ParseTopicFilter([]any{"0x1234"})
	require.ErrorAs(t, err, &tfErr)
}

func TestTopicFilterWire(t *testing.T) {
	f := TopicFilter{ExactTopic(sig), AnyTopic(), OneOfTopics(hashA)}
	assert.Equal(t, []any{sig.Hex(), nil, []any{hashA.Hex()}}, f.Wire())

	geth, err := ParseTopicFilter([][]common.Hash{{sig}, nil, {hashA, hashB}})
	require.NoError(t, err)
	assert.True(t, geth[1].IsWildcard())
	assert.True(t, geth.Matches([]common.Hash{sig, hashC, hashB}))
}
