package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReusesSessionBoard(t *testing.T) {
	svc, _ := newTestBoardService(newMemTable(SeedTasks()...))
	reg := NewBoardRegistry(svc, time.Hour, 10)
	ctx := context.Background()

	first := reg.Acquire(ctx, "tok-a")
	assert.Same(t, first, reg.Acquire(ctx, "tok-a"))
	assert.NotSame(t, first, reg.Acquire(ctx, "tok-b"))
	assert.Len(t, first.Tasks(), 3)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	svc, _ := newTestBoardService(newMemTable())
	reg := NewBoardRegistry(svc, time.Hour, 3)
	ctx := context.Background()

	kept := reg.Acquire(ctx, "tok-kept")
	for i := 0; i < 10; i++ {
		reg.Acquire(ctx, fmt.Sprintf("tok-%d", i))
		reg.Acquire(ctx, "tok-kept")
	}

	assert.Equal(t, 3, reg.Len())
	assert.Same(t, kept, reg.Acquire(ctx, "tok-kept"))
}

func TestRegistryExpiresIdleBoards(t *testing.T) {
	svc, _ := newTestBoardService(newMemTable())
	reg := NewBoardRegistry(svc, 20*time.Millisecond, 0)
	ctx := context.Background()

	first := reg.Acquire(ctx, "tok-a")
	time.Sleep(60 * time.Millisecond)

	assert.NotSame(t, first, reg.Acquire(ctx, "tok-a"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryDrop(t *testing.T) {
	svc, _ := newTestBoardService(newMemTable())
	reg := NewBoardRegistry(svc, 0, 0)
	ctx := context.Background()

	first := reg.Acquire(ctx, "tok-a")
	reg.Drop("tok-a")
	reg.Drop("tok-unknown")

	assert.Equal(t, 0, reg.Len())
	assert.NotSame(t, first, reg.Acquire(ctx, "tok-a"))
}
