package announcement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/apptest"
	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/announcement"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *apptest.AnnouncementRepo
	notifier  *apptest.Notifier
	locker    *apptest.Locker
	add       *AddAnnouncementUseCase
	update    *UpdateAnnouncementUseCase
	remove    *DeleteAnnouncementUseCase
	query     *QueryUseCase
	scheduler *Scheduler
}

func newFixture() *fixture {
	metrics.InitMetrics()

	repo := apptest.NewAnnouncementRepo()
	notifier := &apptest.Notifier{}
	locker := apptest.NewLocker()
	log := zap.NewNop()
	publisher := NewPublisher(repo, notifier, log)
	clock := apptest.FixedClock(now)

	f := &fixture{
		repo:      repo,
		notifier:  notifier,
		locker:    locker,
		add:       NewAddAnnouncementUseCase(repo, publisher, log),
		update:    NewUpdateAnnouncementUseCase(repo, publisher, log),
		remove:    NewDeleteAnnouncementUseCase(repo),
		query:     NewQueryUseCase(repo),
		scheduler: NewScheduler(repo, publisher, locker, time.Minute, 30*time.Second, log),
	}
	f.add.now, f.update.now, f.query.now, f.scheduler.now = clock, clock, clock, clock
	return f
}

func TestAdd_DueIsPublishedAndPushedImmediately(t *testing.T) {
	f := newFixture()

	view, err := f.add.Execute(context.Background(), 1, AddAnnouncementRequest{
		Description: "店庆八折",
		PostedAt:    now.Add(-time.Second),
		ExpiryDate:  now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, view.IsPublished)
	assert.True(t, f.repo.Get(view.ID).IsPublished)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, port.EventReceiveAnnouncement, sent[0].Event)
	assert.Zero(t, sent[0].UserID)
	assert.Equal(t, "店庆八折", sent[0].Data.(Notice).Description)
}

func TestAdd_FutureWaitsForScheduler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{
		Description: "下周上新",
		PostedAt:    now.Add(time.Hour),
		ExpiryDate:  now.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, view.IsPublished)
	assert.Empty(t, f.notifier.Sent())

	n, err := f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.scheduler.now = apptest.FixedClock(now.Add(time.Hour))
	n, err = f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, f.repo.Get(view.ID).IsPublished)
	assert.Len(t, f.notifier.Sent(), 1)

	// 已发布的不会重复推送
	n, err = f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.notifier.Sent(), 1)
}

func TestAdd_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "  ", PostedAt: now, ExpiryDate: now.Add(time.Hour)})
	assert.ErrorIs(t, err, announcement.ErrEmptyDescription)

	_, err = f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "x", PostedAt: now, ExpiryDate: now})
	assert.ErrorIs(t, err, announcement.ErrInvalidExpiry)
}

func TestPublish_PushFailureIsCompensated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.notifier.Err = apptest.ErrBoom

	view, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{
		Description: "推送失败",
		PostedAt:    now.Add(-time.Minute),
		ExpiryDate:  now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.False(t, view.IsPublished)
	assert.False(t, f.repo.Get(view.ID).IsPublished)

	// 推送恢复后由下一轮轮询发布
	f.notifier.Err = nil
	n, err := f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, f.repo.Get(view.ID).IsPublished)
}

func TestScheduler_SkipsWhenLockHeld(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "x", PostedAt: now.Add(time.Hour), ExpiryDate: now.Add(2 * time.Hour)})
	require.NoError(t, err)
	f.scheduler.now = apptest.FixedClock(now.Add(90 * time.Minute))

	unlock, ok, err := f.locker.TryLock(ctx, schedulerLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, unlock(ctx))
	n, err = f.scheduler.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	f := newFixture()
	f.scheduler.interval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.scheduler.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestUpdateDeleteAndQuery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	expired, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "旧公告", PostedAt: now.Add(-48 * time.Hour), ExpiryDate: now.Add(-24 * time.Hour)})
	require.NoError(t, err)
	active, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "新公告", PostedAt: now.Add(-time.Hour), ExpiryDate: now.Add(time.Hour)})
	require.NoError(t, err)
	pending, err := f.add.Execute(ctx, 1, AddAnnouncementRequest{Description: "预告", PostedAt: now.Add(time.Hour), ExpiryDate: now.Add(2 * time.Hour)})
	require.NoError(t, err)

	list, err := f.query.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	// 改为已到期后立即发布
	updated, err := f.update.Execute(ctx, pending.ID, AddAnnouncementRequest{Description: "预告（提前）", PostedAt: now, ExpiryDate: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "预告（提前）", f.repo.Get(pending.ID).Description)

	page, err := f.query.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, f.remove.Execute(ctx, expired.ID))
	assert.ErrorIs(t, f.remove.Execute(ctx, expired.ID), announcement.ErrAnnouncementNotFound)
	_, err = f.update.Execute(ctx, expired.ID, AddAnnouncementRequest{Description: "x", PostedAt: now, ExpiryDate: now.Add(time.Hour)})
	assert.ErrorIs(t, err, announcement.ErrAnnouncementNotFound)
}
