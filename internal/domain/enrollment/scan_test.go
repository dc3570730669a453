package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
)

func TestScan_Run(t *testing.T) {
	t.Parallel()

	scan := enrollment.Scan{Increment: 25, Interval: time.Millisecond, Settle: time.Millisecond}

	var got []int
	err := scan.Run(context.Background(), func(pct int) {
		got = append(got, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{25, 50, 75, 100}, got)
}

func TestScan_Run_IncrementNotDividing100(t *testing.T) {
	t.Parallel()

	scan := enrollment.Scan{Increment: 30, Interval: time.Millisecond, Settle: time.Millisecond}

	var got []int
	err := scan.Run(context.Background(), func(pct int) {
		got = append(got, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 60, 90, 100}, got, "final tick is clamped to 100")
}

func TestScan_Run_Cancelled(t *testing.T) {
	t.Parallel()

	scan := enrollment.Scan{Increment: 1, Interval: 5 * time.Millisecond, Settle: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	var last int
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := scan.Run(ctx, func(pct int) { last = pct })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, last, 100)
}

func TestScan_Defaults(t *testing.T) {
	t.Parallel()

	face := enrollment.FaceScan()
	assert.Equal(t, 1, face.Increment)
	assert.Equal(t, 45*time.Millisecond, face.Interval)
	assert.Equal(t, 1200*time.Millisecond, face.Settle)

	doc := enrollment.DocumentScan()
	assert.Equal(t, 5, doc.Increment)
	assert.Equal(t, 80*time.Millisecond, doc.Interval)
	assert.Equal(t, time.Second, doc.Settle)
}
