package contact

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
	db := testutil.NewDB(t, &Message{})
	return NewService(db, testutil.Config(), logger.Discard())
}

func TestSubmit(t *testing.T) {
	svc := newService(t)

	msg, err := svc.Submit(context.Background(), &SubmitRequest{
		Name:    " Jane ",
		Email:   "Jane@Example.com",
		Message: "Do you ship abroad?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", msg.Name)
	assert.Equal(t, "jane@example.com", msg.Email)
	assert.Empty(t, msg.Subject)
	assert.False(t, msg.IsRead)
}

func TestSubmitValidation(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing name", SubmitRequest{Email: "a@example.com", Message: "hi"}},
		{"blank message", SubmitRequest{Name: "A", Email: "a@example.com", Message: "  "}},
		{"bad email", SubmitRequest{Name: "A", Email: "nope", Message: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), &tt.req)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestListAndMarkRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var ids []uint
	for _, body := range []string{"first", "second", "third"} {
		msg, err := svc.Submit(ctx, &SubmitRequest{Name: "A", Email: "a@example.com", Message: body})
		require.NoError(t, err)
		ids = append(ids, msg.ID)
	}

	require.NoError(t, svc.MarkRead(ctx, ids[0], true))

	unread, err := svc.List(ctx, &MessageListRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread.Messages, 2)
	assert.Equal(t, int64(2), unread.UnreadCount)

	all, err := svc.List(ctx, &MessageListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Messages, 3)

	require.NoError(t, svc.MarkRead(ctx, ids[0], false))
	unread, err = svc.List(ctx, &MessageListRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unread.Messages, 3)

	assert.ErrorIs(t, svc.MarkRead(ctx, 999, true), apperror.ErrNotFound)
}
