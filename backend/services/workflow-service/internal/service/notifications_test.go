package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkNotificationAsReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.grantStation(t, owner, "STATION-01")
	req, err := f.svc.RequestPayoutFromAdmin(ctx, owner.ID, 500)
	require.NoError(t, err)
	_, err = f.svc.ApprovePayoutRequest(ctx, req.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, f.svc.UnreadNotificationsCount(owner.ID))
	notes := f.svc.UserNotifications(owner.ID)
	require.Len(t, notes, 2)

	first, err := f.svc.MarkNotificationAsRead(ctx, notes[0].ID)
	require.NoError(t, err)
	assert.True(t, first.Read)
	again, err := f.svc.MarkNotificationAsRead(ctx, notes[0].ID)
	require.NoError(t, err)
	assert.True(t, again.Read)

	assert.Equal(t, 1, f.svc.UnreadNotificationsCount(owner.ID))
	assert.Zero(t, f.svc.UnreadNotificationsCount(member.ID))

	n, err := f.svc.Notification(notes[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestMarkNotificationUnknownID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MarkNotificationAsRead(context.Background(), "NOT-404")
	requireErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Notification("NOT-404")
	requireErrorIs(t, err, ErrNotFound)
}
