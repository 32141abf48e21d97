package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	var delivered []string

	dispatcher := NewRegistryBuilder().
		RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
			delivered = append(delivered, "first:"+event.AggregateID)
			return nil
		}).
		RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
			delivered = append(delivered, "second:"+event.AggregateID)
			return nil
		}).
		RegisterFunc(UserDeleted, func(ctx context.Context, event Event) error {
			delivered = append(delivered, "deleted:"+event.AggregateID)
			return nil
		}).
		Build()

	evts := []Event{
		New("u1", "user", UserCreated, nil),
		New("u2", "user", UserDeleted, nil),
	}
	require.NoError(t, dispatcher.Dispatch(context.Background(), evts))

	assert.Equal(t, []string{"first:u1", "second:u1", "deleted:u2"}, delivered)
}

func TestDispatcherStopsOnFirstError(t *testing.T) {
	var delivered []string
	boom := fmt.Errorf("handler blew up")

	dispatcher := NewRegistryBuilder().
		RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
			delivered = append(delivered, "a")
			return boom
		}).
		RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
			delivered = append(delivered, "b")
			return nil
		}).
		Build()

	evts := []Event{
		New("u1", "user", UserCreated, nil),
		New("u2", "user", UserCreated, nil),
	}
	err := dispatcher.Dispatch(context.Background(), evts)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "u1")

	// Neither the second handler nor the second event ran.
	assert.Equal(t, []string{"a"}, delivered)
}

func TestDispatcherIgnoresUnregisteredKinds(t *testing.T) {
	dispatcher := NewRegistryBuilder().Build()
	err := dispatcher.Dispatch(context.Background(), []Event{
		New("u1", "user", UserCreated, nil),
	})
	assert.NoError(t, err)
}

func TestBuildFreezesRegistrations(t *testing.T) {
	var count int
	builder := NewRegistryBuilder().
		RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
			count++
			return nil
		})

	dispatcher := builder.Build()

	// Registrations after Build must not reach the built dispatcher.
	builder.RegisterFunc(UserCreated, func(ctx context.Context, event Event) error {
		count += 100
		return nil
	})

	require.NoError(t, dispatcher.Dispatch(context.Background(), []Event{
		New("u1", "user", UserCreated, nil),
	}))
	assert.Equal(t, 1, count)
}

func TestEventConstruction(t *testing.T) {
	event := New("u1", "user", UserCreated, map[string]interface{}{"email": "a@example.com"})
	assert.Equal(t, "u1", event.AggregateID)
	assert.Equal(t, "user", event.AggregateName)
	assert.Equal(t, UserCreated, event.Kind)
	assert.Equal(t, "a@example.com", event.Data["email"])
	assert.False(t, event.OccurredAt.IsZero())
}
