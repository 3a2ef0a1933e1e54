package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/shopcore/internal/models"
)

func newTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()

	ctx := context.Background()
	s, err := OpenMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, ctx
}

func TestWatchEmitsInitialSnapshot(t *testing.T) {
	s, ctx := newTestStore(t)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := Watch(watchCtx, s, func(ctx context.Context) ([]models.Category, error) {
		var cats []models.Category
		err := s.DB.WithContext(ctx).Order("position ASC").Find(&cats).Error
		return cats, err
	}, "categories")

	select {
	case snap := <-ch:
		assert.Len(t, snap, 0)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}
}

func TestWatchEmitsOnTouch(t *testing.T) {
	s, ctx := newTestStore(t)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := Watch(watchCtx, s, func(ctx context.Context) ([]models.Category, error) {
		var cats []models.Category
		err := s.DB.WithContext(ctx).Find(&cats).Error
		return cats, err
	}, "categories")

	<-ch

	require.NoError(t, s.DB.Create(&models.Category{ID: "cat_1", Name: "Смартфоны", Position: 1}).Error)
	s.Touch("categories")

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, "cat_1", snap[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after touch")
	}
}

func TestWatchIgnoresUnrelatedTables(t *testing.T) {
	s, ctx := newTestStore(t)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := Watch(watchCtx, s, func(ctx context.Context) (int64, error) {
		var n int64
		err := s.DB.WithContext(ctx).Model(&models.Category{}).Count(&n).Error
		return n, err
	}, "categories")

	<-ch

	s.Touch("products")

	select {
	case <-ch:
		t.Fatal("unrelated table touch must not emit")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	s, ctx := newTestStore(t)

	watchCtx, cancel := context.WithCancel(ctx)
	ch := Watch(watchCtx, s, func(ctx context.Context) (int64, error) {
		var n int64
		err := s.DB.WithContext(ctx).Model(&models.Category{}).Count(&n).Error
		return n, err
	}, "categories")

	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("channel did not close")
	}
}

func TestTouchCoalescesBursts(t *testing.T) {
	s, _ := newTestStore(t)

	notify, cancel := s.Subscribe("cart_items")
	defer cancel()

	for i := 0; i < 10; i++ {
		s.Touch("cart_items")
	}

	<-notify
	select {
	case <-notify:
		t.Fatal("burst of touches must coalesce into one pending notification")
	default:
	}
}

func TestSubscribeAllTables(t *testing.T) {
	s, _ := newTestStore(t)

	notify, cancel := s.Subscribe()
	defer cancel()

	s.Touch("anything")
	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatal("subscription without a table filter must hear every touch")
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.DB.Create(&models.CartItem{ProductID: "prod_nope", UserID: "u", Quantity: 1}).Error
	require.Error(t, err, "cart line referencing a missing product must be rejected")
}
