package pluginstate

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	gormrepo "quore/internal/repository/gorm"

	"quore/domain/plugin"
)

func setupMachine(t *testing.T) (*Machine, plugin.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&plugin.Plugin{},
		&plugin.ToolDescriptor{},
		&plugin.ResourceDescriptor{},
		&plugin.PromptDescriptor{},
	))

	repo := gormrepo.NewPluginRepository(db)
	return New(repo), repo
}

func newPlugin(t *testing.T, repo plugin.Repository, state plugin.State) *plugin.Plugin {
	p := &plugin.Plugin{
		Name:        "p-" + string(state),
		WorkspaceID: "wks_1",
		EndpointURL: "http://localhost:9000/mcp",
		State:       state,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestCanTransition(t *testing.T) {
	legal := map[plugin.State][]plugin.State{
		plugin.StateRegistered:   {plugin.StateInitializing},
		plugin.StateInitializing: {plugin.StateStarting, plugin.StateRunning},
		plugin.StateStarting:     {plugin.StateRunning},
		plugin.StateRunning:      {plugin.StateIdle},
		plugin.StateIdle:         {plugin.StateRunning},
		plugin.StateError:        {plugin.StateInitializing},
		plugin.StateStopped:      {plugin.StateInitializing},
	}

	for _, from := range plugin.AllStates {
		for _, to := range plugin.AllStates {
			want := from == to || to == plugin.StateError || to == plugin.StateStopped
			for _, next := range legal[from] {
				if next == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStates(t *testing.T) {
	assert.False(t, CanTransition("bogus", plugin.StateRunning))
	assert.False(t, CanTransition(plugin.StateRunning, "bogus"))
}

func TestTransition(t *testing.T) {
	t.Run("legal move persists state and description", func(t *testing.T) {
		machine, repo := setupMachine(t)
		ctx := context.Background()

		p := newPlugin(t, repo, plugin.StateRegistered)
		err := machine.Transition(ctx, p, plugin.StateInitializing, "")
		require.NoError(t, err)
		assert.Equal(t, plugin.StateInitializing, p.State)
		assert.Equal(t, plugin.StateDescriptions[plugin.StateInitializing], p.StateDescription)

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, plugin.StateInitializing, found.State)
	})

	t.Run("custom description wins over the fixed one", func(t *testing.T) {
		machine, repo := setupMachine(t)
		ctx := context.Background()

		p := newPlugin(t, repo, plugin.StateInitializing)
		err := machine.Transition(ctx, p, plugin.StateError, "clone failed: exit status 128")
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "clone failed: exit status 128", found.StateDescription)
	})

	t.Run("illegal move leaves state unchanged", func(t *testing.T) {
		machine, repo := setupMachine(t)
		ctx := context.Background()

		p := newPlugin(t, repo, plugin.StateRegistered)
		err := machine.Transition(ctx, p, plugin.StateRunning, "")

		var serr *StateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, plugin.StateRegistered, serr.From)
		assert.Equal(t, plugin.StateRunning, serr.To)

		assert.Equal(t, plugin.StateRegistered, p.State)
		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, plugin.StateRegistered, found.State)
	})

	t.Run("error recovers through initializing", func(t *testing.T) {
		machine, repo := setupMachine(t)
		ctx := context.Background()

		p := newPlugin(t, repo, plugin.StateError)
		require.NoError(t, machine.Transition(ctx, p, plugin.StateInitializing, ""))
	})

	t.Run("idle loop", func(t *testing.T) {
		machine, repo := setupMachine(t)
		ctx := context.Background()

		p := newPlugin(t, repo, plugin.StateRunning)
		require.NoError(t, machine.Transition(ctx, p, plugin.StateIdle, ""))
		require.NoError(t, machine.Transition(ctx, p, plugin.StateRunning, ""))
	})
}
