package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/verification"
	"github.com/solux-cash/solux-backend/pkg/errorx"
	"github.com/solux-cash/solux-backend/pkg/watermillx"
	"github.com/solux-cash/solux-backend/tests/integration/builders"
)

func TestVerificationRepo_CRUD(t *testing.T) {
	t.Parallel()

	repo := NewVerificationRepo(nil)
	ctx := context.Background()

	_, err := repo.GetVerification(ctx, "user@example.com")
	require.True(t, errorx.IsNotFound(err))

	v := builders.NewVerificationBuilder().WithEmail("user@example.com").Build()
	require.NoError(t, repo.SaveVerification(ctx, v))

	got, err := repo.GetVerification(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, v.Code(), got.Code())

	require.NoError(t, repo.DeleteVerification(ctx, v))
	_, err = repo.GetVerification(ctx, "user@example.com")
	require.True(t, errorx.IsNotFound(err))
}

func TestVerificationRepo_OverwriteKeepsLatest(t *testing.T) {
	t.Parallel()

	repo := NewVerificationRepo(nil)
	ctx := context.Background()

	first := builders.NewVerificationBuilder().WithEmail("user@example.com").WithCode("111111").Build()
	second := builders.NewVerificationBuilder().WithEmail("user@example.com").WithCode("222222").Build()

	require.NoError(t, repo.SaveVerification(ctx, first))
	require.NoError(t, repo.SaveVerification(ctx, second))

	got, err := repo.GetVerification(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code())
}

func TestVerificationRepo_CaseSensitiveKeys(t *testing.T) {
	t.Parallel()

	repo := NewVerificationRepo(nil)
	ctx := context.Background()

	v := builders.NewVerificationBuilder().WithEmail("User@Example.com").Build()
	require.NoError(t, repo.SaveVerification(ctx, v))

	_, err := repo.GetVerification(ctx, "user@example.com")
	require.True(t, errorx.IsNotFound(err))

	_, err = repo.GetVerification(ctx, "User@Example.com")
	require.NoError(t, err)
}

func TestVerificationRepo_GetReturnsDetachedCopy(t *testing.T) {
	t.Parallel()

	repo := NewVerificationRepo(nil)
	ctx := context.Background()

	v := builders.NewVerificationBuilder().WithEmail("user@example.com").WithCode("111111").Build()
	require.NoError(t, repo.SaveVerification(ctx, v))

	got, err := repo.GetVerification(ctx, "user@example.com")
	require.NoError(t, err)
	assert.NotSame(t, v, got)
	assert.Equal(t, v.Code(), got.Code())
	assert.Equal(t, v.ExpiresAt(), got.ExpiresAt())

	// recording events on the copy must not reach the stored entry
	got.MarkVerified()
	stored, err := repo.GetVerification(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.GetUncommittedEvents())
}

func TestVerificationRepo_PublishesEvents(t *testing.T) {
	t.Parallel()

	wmlogger := watermillx.NewOTelFilteredSlogLogger(slog.Default(), slog.LevelError)
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, wmlogger)
	t.Cleanup(func() { _ = pubsub.Close() })

	msgs, err := pubsub.Subscribe(context.Background(), verification.EventStreamName)
	require.NoError(t, err)

	bus, err := watermillx.NewEventBus(pubsub, wmlogger)
	require.NoError(t, err)

	repo := NewVerificationRepo(bus)
	v, err := verification.NewVerification("user@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.SaveVerification(context.Background(), v))

	select {
	case msg := <-msgs:
		var issued verification.CodeIssued
		require.NoError(t, json.Unmarshal(msg.Payload, &issued))
		assert.Equal(t, "user@example.com", issued.Email)
		assert.Equal(t, v.Code(), issued.Code)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for CodeIssued on the bus")
	}

	assert.Empty(t, v.GetUncommittedEvents(), "publish commits recorded events")
}
