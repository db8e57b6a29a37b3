package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"ethwire/internal/codec"
	"ethwire/internal/model"
)

// ParseAddresses converts string addresses into common.Address. With strict
// set, mixed-case input must carry a valid checksum.
func ParseAddresses(inputs []string, strict bool) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		addr, err := codec.DecodeAddress(input, strict)
		if err != nil {
			return nil, fmt.Errorf("invalid address %s: %w", input, err)
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// ParseTopics builds a positional topic filter. Each input is one position:
// "*" or "" matches anything, "a|b" matches either hash.
func ParseTopics(inputs []string) (model.TopicFilter, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	wire := make([]any, len(inputs))
	for i, input := range inputs {
		input = strings.TrimSpace(input)
		switch {
		case input == "" || input == "*":
			wire[i] = nil
		case strings.Contains(input, "|"):
			alts := strings.Split(input, "|")
			items := make([]any, 0, len(alts))
			for _, alt := range alts {
				items = append(items, strings.TrimSpace(alt))
			}
			wire[i] = items
		default:
			wire[i] = input
		}
	}
	return model.ParseTopicFilter(wire)
}
