package model

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
)

// TopicSlot constrains one topic position: a wildcard, an exact hash, or an
// OR-list of hashes.
type TopicSlot struct {
	hashes []common.Hash
	list   bool
}

// AnyTopic matches every value at its position.
func AnyTopic() TopicSlot { return TopicSlot{} }

func ExactTopic(h common.Hash) TopicSlot { return TopicSlot{hashes: []common.Hash{h}} }

// OneOfTopics matches any of hs. An empty list matches everything.
func OneOfTopics(hs ...common.Hash) TopicSlot {
	return TopicSlot{hashes: append([]common.Hash{}, hs...), list: true}
}

func (s TopicSlot) IsWildcard() bool { return len(s.hashes) == 0 }

// IsList reports whether the slot was given as an OR-list.
func (s TopicSlot) IsList() bool { return s.list }

func (s TopicSlot) Hashes() []common.Hash { return append([]common.Hash(nil), s.hashes...) }

func (s TopicSlot) Matches(topic common.Hash) bool {
	if s.IsWildcard() {
		return true
	}
	for _, h := range s.hashes {
		if h == topic {
			return true
		}
	}
	return false
}

// Wire returns the JSON-RPC form of the slot: null, a hash string, or a list.
func (s TopicSlot) Wire() any {
	if !s.list {
		if len(s.hashes) == 0 {
			return nil
		}
		return s.hashes[0].Hex()
	}
	out := make([]any, len(s.hashes))
	for i, h := range s.hashes {
		out[i] = h.Hex()
	}
	return out
}

func (s TopicSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Wire())
}

// TopicFilter is the positional topic constraint of a log filter. Slots are
// combined with AND; hashes inside one slot with OR.
type TopicFilter []TopicSlot

// Matches applies the filter to a log's topics. A filter with more slots than the
// log has topics never matches.
func (f TopicFilter) Matches(topics []common.Hash) bool {
	if len(f) > len(topics) {
		return false
	}
	for i, slot := range f {
		if !slot.Matches(topics[i]) {
			return false
		}
	}
	return true
}

func (f TopicFilter) Wire() []any {
	out := make([]any, len(f))
	for i, slot := range f {
		out[i] = slot.Wire()
	}
	return out
}

// TopicFilterError reports a malformed topic filter position.
type TopicFilterError struct {
	Position int
	Reason   string
}

func (e *TopicFilterError) Error() string {
	return fmt.Sprintf("topic filter position %d: %s", e.Position, e.Reason)
}

// ParseTopicFilter converts mixed input into a TopicFilter. Accepted at each
// position: nil, a hash (common.Hash or hex string), or a list of hashes. Lists
// nested more than one level deep are rejected.
func ParseTopicFilter(v any) (TopicFilter, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case TopicFilter:
		return x, nil
	case [][]common.Hash:
		out := make(TopicFilter, len(x))
		for i, hs := range x {
			if len(hs) == 0 {
				out[i] = AnyTopic()
			} else {
				out[i] = OneOfTopics(hs...)
			}
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &TopicFilterError{Position: 0, Reason: fmt.Sprintf("expected a list, got %T", v)}
	}

	out := make(TopicFilter, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		slot, err := parseTopicSlot(i, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = slot
	}
	return out, nil
}

func parseTopicSlot(pos int, v any) (TopicSlot, error) {
	switch x := v.(type) {
	case nil:
		return AnyTopic(), nil
	case TopicSlot:
		return x, nil
	case common.Hash, *common.Hash, string:
		h, err := codec.HashOf(x)
		if err != nil {
			return TopicSlot{}, &TopicFilterError{Position: pos, Reason: err.Error()}
		}
		return ExactTopic(h), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return TopicSlot{}, &TopicFilterError{Position: pos, Reason: fmt.Sprintf("unsupported %T", v)}
	}
	hashes := make([]common.Hash, 0, rv.Len())
	for j := 0; j < rv.Len(); j++ {
		elem := rv.Index(j).Interface()
		switch elem.(type) {
		case common.Hash, *common.Hash, string:
		case nil:
			return TopicSlot{}, &TopicFilterError{Position: pos, Reason: "null inside an OR-list"}
		default:
			return TopicSlot{}, &TopicFilterError{Position: pos, Reason: "topic lists nest at most one level"}
		}
		h, err := codec.HashOf(elem)
		if err != nil {
			return TopicSlot{}, &TopicFilterError{Position: pos, Reason: err.Error()}
		}
		hashes = append(hashes, h)
	}
	return OneOfTopics(hashes...), nil
}
