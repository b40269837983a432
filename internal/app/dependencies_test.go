package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestNewDependenciesMemoryFallback(t *testing.T) {
	deps, err := NewDependencies(context.Background(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, deps.Customers)
	require.NotNil(t, deps.Products)
	require.NotNil(t, deps.Orders)
	require.NotNil(t, deps.Outbox)
	require.Nil(t, deps.Store)
	require.NotNil(t, deps.Logger)

	require.NoError(t, deps.Close())
}

func TestNewDependenciesMemoryIsUsable(t *testing.T) {
	deps, err := NewDependencies(context.Background(), "", nil)
	require.NoError(t, err)

	err = deps.Customers.Create(domain.Customer{
		ID:        "c-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	got, err := deps.Customers.Get("c-1")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)
}

func TestNewDependenciesBadDSN(t *testing.T) {
	_, err := NewDependencies(context.Background(), "://not-a-dsn", nil)
	require.Error(t, err)
}

func TestDependenciesCloseNil(t *testing.T) {
	var deps *Dependencies
	require.NoError(t, deps.Close())
}
