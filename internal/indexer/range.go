package indexer

import "fmt"

// BlockRange is an inclusive span of block heights.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len is the number of blocks in r.
func (r BlockRange) Len() uint64 { return r.To - r.From + 1 }

func (r BlockRange) String() string { return fmt.Sprintf("[%d, %d]", r.From, r.To) }

// SplitRange cuts [from, to] into consecutive ranges of at most size blocks.
// Only the last range may be shorter.
func SplitRange(from, to, size uint64) ([]BlockRange, error) {
	switch {
	case size == 0:
		return nil, fmt.Errorf("batch size must be greater than zero")
	case to < from:
		return nil, fmt.Errorf("invalid range: to %d is below from %d", to, from)
	}

	out := make([]BlockRange, 0, (to-from)/size+1)
	for start := from; ; start += size {
		// to-start avoids overflow when start+size passes MaxUint64.
		if to-start < size {
			return append(out, BlockRange{From: start, To: to}), nil
		}
		out = append(out, BlockRange{From: start, To: start + size - 1})
	}
}
