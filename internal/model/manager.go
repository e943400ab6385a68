package model

// Manager is the singleton position registry keyed by the program id.
type Manager struct {
	ID            string
	Address       string
	PositionCount uint64
}

func (m *Manager) EntityID() string { return m.ID }

// PoolManager holds program-wide counters.
type PoolManager struct {
	ID             string
	Address        string
	PoolCount      uint64
	PositionCount  uint64
	SwapCount      uint64
	TotalVolumeUSD float64
	TotalFeesUSD   float64
}

func (m *PoolManager) EntityID() string { return m.ID }

// PlaceholderHookID identifies the hook row every pool points at.
const PlaceholderHookID = "0x"

// Hook is the placeholder hook referenced by pools.
type Hook struct {
	ID          string
	Address     string
	Whitelisted bool
	Blacklisted bool
}

func (h *Hook) EntityID() string { return h.ID }
