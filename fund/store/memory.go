// Package store provides RunStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/fund-engine/fund"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs map[string]fund.Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]fund.Run)}
}

// Save archives a run. Append-only.
func (m *Memory) Save(_ context.Context, run fund.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fund.ErrDuplicateRun
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *Memory) Run(_ context.Context, id string) (*fund.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fund.ErrRunNotFound
	}
	out := cloneRun(run)
	return &out, nil
}

func (m *Memory) List(_ context.Context) ([]fund.RunMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metas := make([]fund.RunMeta, 0, len(m.runs))
	for _, run := range m.runs {
		metas = append(metas, run.Meta())
	}
	// ULIDs sort by creation time, so descending ID is newest first.
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID > metas[j].ID })
	return metas, nil
}

// cloneRun copies slice-backed fields so callers cannot mutate stored state.
func cloneRun(run fund.Run) fund.Run {
	out := run
	out.Result.Ledger = append([]fund.LedgerEntry(nil), run.Result.Ledger...)
	out.Result.Summary = append([]fund.InvestorUnits(nil), run.Result.Summary...)
	return out
}
