package indexer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSlots(t *testing.T) {
	tests := []struct {
		name     string
		from, to uint64
		size     uint64
		want     []SlotRange
	}{
		{"even batches", 100, 105, 2, []SlotRange{{100, 101}, {102, 103}, {104, 105}}},
		{"short tail", 100, 104, 2, []SlotRange{{100, 101}, {102, 103}, {104, 104}}},
		{"single slot", 5, 5, 10, []SlotRange{{5, 5}}},
		{"batch larger than range", 7, 9, 100, []SlotRange{{7, 9}}},
		{"top of slot space", math.MaxUint64 - 2, math.MaxUint64, 2, []SlotRange{{math.MaxUint64 - 2, math.MaxUint64 - 1}, {math.MaxUint64, math.MaxUint64}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitSlots(tt.from, tt.to, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var total uint64
			for _, r := range got {
				total += r.Len()
			}
			assert.Equal(t, tt.to-tt.from+1, total)
		})
	}
}

func TestSplitSlotsInvalid(t *testing.T) {
	_, err := SplitSlots(10, 9, 1)
	assert.Error(t, err)
	_, err = SplitSlots(1, 10, 0)
	assert.Error(t, err)
}
