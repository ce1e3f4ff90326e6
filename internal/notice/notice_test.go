package notice

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashRecordsInOrder(t *testing.T) {
	ctx := context.Background()
	f := NewFlash()

	f.Success(ctx, "saved")
	f.Error(ctx, "oops")

	assert.Equal(t, []Message{
		{Level: LevelSuccess, Text: "saved"},
		{Level: LevelError, Text: "oops"},
	}, f.Messages())
}

func TestFlashDrain(t *testing.T) {
	f := NewFlash()
	f.Error(context.Background(), "once")

	assert.Len(t, f.Drain(), 1)
	assert.Empty(t, f.Drain())
	assert.Empty(t, f.Messages())
}

func TestFlashConcurrent(t *testing.T) {
	f := NewFlash()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Success(context.Background(), "ok")
		}()
	}
	wg.Wait()

	assert.Len(t, f.Messages(), 50)
}

func TestDiscard(t *testing.T) {
	Discard.Success(context.Background(), "x")
	Discard.Error(context.Background(), "y")
}
