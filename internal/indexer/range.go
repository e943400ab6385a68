package indexer

import "fmt"

// SlotRange is an inclusive range of slots. Some slots in it may have been
// skipped by the leader and have no block.
type SlotRange struct {
	From uint64
	To   uint64
}

// Len returns the number of slots in the range.
func (r SlotRange) Len() uint64 { return r.To - r.From + 1 }

// SplitSlots cuts [from, to] into consecutive ranges of at most size slots.
func SplitSlots(from, to, size uint64) ([]SlotRange, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to slot %d is before from slot %d", to, from)
	}

	ranges := make([]SlotRange, 0, (to-from)/size+1)
	for start := from; ; start += size {
		end := to
		if to-start >= size {
			end = start + size - 1
		}
		ranges = append(ranges, SlotRange{From: start, To: end})
		if end == to {
			return ranges, nil
		}
	}
}
