package newsletter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewDB(t, &Subscription{})
	return NewService(db, testutil.Config(), logger.Discard())
}

func TestSubscribeLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, " Fan@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "fan@example.com", sub.Email)
	assert.True(t, sub.IsActive)

	_, err = svc.Subscribe(ctx, "fan@example.com")
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "already_subscribed", appErr.Code)

	require.NoError(t, svc.Unsubscribe(ctx, "FAN@example.com"))

	again, err := svc.Subscribe(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Nil(t, again.UnsubscribedAt)
}

func TestSubscribeValidatesEmail(t *testing.T) {
	svc := newService(t)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := svc.Subscribe(context.Background(), email)
		assert.ErrorIs(t, err, apperror.ErrValidation, email)
	}
}

func TestUnsubscribeUnknown(t *testing.T) {
	svc := newService(t)
	assert.ErrorIs(t, svc.Unsubscribe(context.Background(), "nobody@example.com"), apperror.ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Subscribe(ctx, email)
		require.NoError(t, err)
	}
	require.NoError(t, svc.Unsubscribe(ctx, "b@example.com"))

	all, err := svc.List(ctx, &SubscriptionListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)

	active, err := svc.List(ctx, &SubscriptionListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active.Subscriptions, 2)
}
