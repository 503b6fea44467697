package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusConfirmed, OrderStatusCompleted, true},
		{OrderStatusConfirmed, OrderStatusCanceled, true},
		{OrderStatusConfirmed, OrderStatusRejected, false},
		{OrderStatusCompleted, OrderStatusCanceled, false},
		{OrderStatusCanceled, OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusConfirmed.IsTerminal())
	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.True(t, OrderStatusCanceled.IsTerminal())
	assert.False(t, OrderStatus("BOGUS").IsTerminal())
}

func TestParsers(t *testing.T) {
	status, err := ParseOrderStatus("CONFIRMED")
	require.NoError(t, err)
	require.Equal(t, OrderStatusConfirmed, status)

	_, err = ParseOrderStatus("confirmed")
	require.Error(t, err)

	kind, err := ParseLedgerEntryKind("RELEASE_40")
	require.NoError(t, err)
	require.Equal(t, LedgerKindRelease40, kind)

	_, err = ParseListingStatus("GONE")
	require.Error(t, err)

	role, err := ParseAccountRole("player")
	require.NoError(t, err)
	require.Equal(t, AccountRolePlayer, role)

	require.True(t, EventOrderCompleted.IsValid())
	require.False(t, OutboxEventType("order_paid").IsValid())
	require.True(t, TriggerScheduler.IsValid())
	require.False(t, TriggerBan.IsValid())
}
