// Package pluginstate enforces the plugin lifecycle state machine.
// Every component that changes a plugin's state goes through
// Machine.Transition; nothing else writes the state column.
package pluginstate

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"quore/domain/plugin"
)

// StateError marks an illegal transition attempt. It signals a
// programming or operations error, never normal control flow.
type StateError struct {
	From plugin.State
	To   plugin.State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("illegal plugin state transition %s -> %s", e.From, e.To)
}

// transitions lists the legal forward edges. Error and stopped are
// reachable from every state; same-state transitions are always legal
// (re-running an idempotent operation is a no-op move). Neither is
// terminal: both recover through initializing.
var transitions = map[plugin.State][]plugin.State{
	plugin.StateRegistered:   {plugin.StateInitializing},
	plugin.StateInitializing: {plugin.StateStarting, plugin.StateRunning},
	plugin.StateStarting:     {plugin.StateRunning},
	plugin.StateRunning:      {plugin.StateIdle},
	plugin.StateIdle:         {plugin.StateRunning},
	plugin.StateError:        {plugin.StateInitializing},
	plugin.StateStopped:      {plugin.StateInitializing},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to plugin.State) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if to == plugin.StateError || to == plugin.StateStopped {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Machine struct {
	repo plugin.Repository
}

func New(repo plugin.Repository) *Machine {
	return &Machine{repo: repo}
}

// Transition validates the move, persists the new state together with
// the description, and updates the in-memory plugin. Construct the
// Machine over a transaction-scoped repository when the transition must
// commit atomically with the operation that caused it.
func (m *Machine) Transition(ctx context.Context, p *plugin.Plugin, to plugin.State, description string) error {
	if !CanTransition(p.State, to) {
		serr := &StateError{From: p.State, To: to}
		log.WithFields(log.Fields{
			"plugin_id": p.ID,
			"from":      p.State,
			"to":        to,
		}).Error("rejected illegal plugin state transition")
		return serr
	}

	if description == "" {
		description = plugin.StateDescriptions[to]
	}

	if err := m.repo.UpdateState(ctx, p.ID, to, description); err != nil {
		return err
	}

	p.State = to
	p.StateDescription = description
	return nil
}
