// Package snapshot persists terminal session state (cart plus
// transaction log) as a single versioned JSON document. Older schema
// versions are migrated forward at load time.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/xid"
)

// CurrentVersion is the schema version written by Encode. Version 1
// predates receipt numbers on transactions.
const CurrentVersion = 2

const keyNamespace = "pos-storage"

type State struct {
	Cart         []domain.CartItem    `json:"cart"`
	Transactions []domain.Transaction `json:"transactions"`
}

type envelope struct {
	Version int   `json:"version"`
	State   State `json:"state"`
}

// Store is the key-value persistence boundary for session snapshots.
type Store interface {
	Load(ctx context.Context, terminalID string) (State, bool, error)
	Save(ctx context.Context, terminalID string, state State) error
}

// Noop discards saves and never finds a snapshot. Used when no
// persistence backend is configured, and in tests.
type Noop struct{}

func (Noop) Load(_ context.Context, _ string) (State, bool, error) { return State{}, false, nil }
func (Noop) Save(_ context.Context, _ string, _ State) error       { return nil }

func Key(terminalID string) string {
	return fmt.Sprintf("%s:%s", keyNamespace, terminalID)
}

func Encode(state State) ([]byte, error) {
	return json.Marshal(envelope{Version: CurrentVersion, State: state})
}

// migrations maps a schema version to the step that lifts a state to
// the next version. Decode applies steps until CurrentVersion.
var migrations = map[int]func(State) State{
	1: migrateV1,
}

// Decode parses a snapshot document and migrates it forward as needed.
// Unknown future versions are rejected.
func Decode(raw []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version > CurrentVersion {
		return State{}, fmt.Errorf("snapshot version %d is newer than supported version %d", env.Version, CurrentVersion)
	}
	state := env.State
	for v := env.Version; v < CurrentVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return State{}, fmt.Errorf("no migration from snapshot version %d", v)
		}
		state = step(state)
	}
	return state, nil
}

// migrateV1 synthesizes receipt numbers for transactions persisted
// before they existed and resets the in-flight cart.
func migrateV1(state State) State {
	migrated := State{
		Transactions: make([]domain.Transaction, len(state.Transactions)),
	}
	for i, tx := range state.Transactions {
		if tx.ReceiptNumber == "" {
			tx.ReceiptNumber = xid.Receipt(tx.CreatedAt)
		}
		migrated.Transactions[i] = tx
	}
	return migrated
}
