package point

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"needu.com/community/internal/entity"
	pointDto "needu.com/community/internal/modules/point/dto"
	pointRepo "needu.com/community/internal/modules/point/repository"
	"needu.com/community/internal/testutil"
	"needu.com/community/pkg/apperror"
)

var kst = time.FixedZone("KST", 9*60*60)

type ledgerFixture struct {
	db    *gorm.DB
	svc   *pointService
	clock time.Time
}

func newLedger(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &ledgerFixture{
		db:    db,
		clock: time.Date(2026, 3, 10, 9, 0, 0, 0, kst),
	}
	f.svc = NewPointService(pointRepo.NewPointRepository(db), kst).(*pointService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *ledgerFixture) createUser(t *testing.T, loginID string) *entity.User {
	t.Helper()
	user := &entity.User{LoginID: loginID, Nickname: loginID, PasswordHash: "hash"}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *ledgerFixture) total(t *testing.T, userID uint) int {
	t.Helper()
	var user entity.User
	require.NoError(t, f.db.First(&user, userID).Error)
	return user.ActivityPoints
}

func (f *ledgerFixture) sumOfActiveLogs(t *testing.T, userID uint) int {
	t.Helper()
	var logs []entity.ActivityLog
	require.NoError(t, f.db.Where("user_id = ? AND is_del = ?", userID, false).Find(&logs).Error)
	sum := 0
	for _, l := range logs {
		var at entity.ActivityType
		require.NoError(t, f.db.First(&at, l.TypeID).Error)
		sum += at.Point
	}
	return sum
}

func TestAddAndRevokeKeepTotalEqualToLedger(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "alice")

	granted, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeSignUp, nil)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 100, f.total(t, user.ID))

	granted, err = f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePostCreated, Reason("post:%d", 7))
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 120, f.total(t, user.ID))
	assert.Equal(t, f.sumOfActiveLogs(t, user.ID), f.total(t, user.ID))

	revoked, err := f.svc.RevokePoint(ctx, user.ID, entity.ActivityTypePostCreated, Reason("post:%d", 7))
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 100, f.total(t, user.ID))
	assert.Equal(t, f.sumOfActiveLogs(t, user.ID), f.total(t, user.ID))

	revoked, err = f.svc.RevokePoint(ctx, user.ID, entity.ActivityTypePostCreated, Reason("post:%d", 7))
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 100, f.total(t, user.ID))

	var logs []entity.ActivityLog
	require.NoError(t, f.db.Where("user_id = ?", user.ID).Find(&logs).Error)
	assert.Len(t, logs, 2, "revoked rows are kept")
}

func TestRecomputeDoesNotTouchModifiedDate(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "bob")

	var before entity.User
	require.NoError(t, f.db.First(&before, user.ID).Error)

	_, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeSignUp, nil)
	require.NoError(t, err)

	var after entity.User
	require.NoError(t, f.db.First(&after, user.ID).Error)
	assert.True(t, before.ModifiedDate.Equal(after.ModifiedDate))
}

func TestDailyCheckInOncePerCalendarDay(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "carol")

	res, err := f.svc.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &pointDto.CheckInResponse{Granted: true, ActivityPoints: 10}, res)

	f.clock = time.Date(2026, 3, 10, 23, 59, 0, 0, kst)
	res, err = f.svc.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &pointDto.CheckInResponse{Granted: false, ActivityPoints: 10}, res)

	// 00:30 KST is still the previous day in UTC.
	f.clock = time.Date(2026, 3, 11, 0, 30, 0, 0, kst)
	res, err = f.svc.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &pointDto.CheckInResponse{Granted: true, ActivityPoints: 20}, res)
}

func TestRevokedCheckInCanBeGrantedAgainSameDay(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "dave")

	_, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeDailyCheckIn, nil)
	require.NoError(t, err)
	revoked, err := f.svc.RevokePoint(ctx, user.ID, entity.ActivityTypeDailyCheckIn, nil)
	require.NoError(t, err)
	require.True(t, revoked)

	granted, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeDailyCheckIn, nil)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 10, f.total(t, user.ID))
}

func TestPersonalInfoGrantedOncePerLifetime(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "erin")

	granted, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePersonalInfo, nil)
	require.NoError(t, err)
	assert.True(t, granted)

	f.clock = f.clock.AddDate(1, 0, 0)
	granted, err = f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePersonalInfo, nil)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 50, f.total(t, user.ID))
}

func TestRepeatableTypesAlwaysInsert(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "frank")

	for i := 0; i < 3; i++ {
		granted, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePostLiked, Reason("like:1:%d", i))
		require.NoError(t, err)
		assert.True(t, granted)
	}
	assert.Equal(t, 15, f.total(t, user.ID))
}

func TestAddPointUnknownTypeIsNoop(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "gina")

	granted, err := f.svc.AddPoint(ctx, user.ID, 99, nil)
	require.NoError(t, err)
	assert.False(t, granted)

	var count int64
	require.NoError(t, f.db.Model(&entity.ActivityLog{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddPointMissingUser(t *testing.T) {
	f := newLedger(t)

	_, err := f.svc.AddPoint(context.Background(), 404, entity.ActivityTypeSignUp, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRevokeMatchesNullReasonOnly(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "hank")

	_, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePostCreated, Reason("post:1"))
	require.NoError(t, err)

	revoked, err := f.svc.RevokePoint(ctx, user.ID, entity.ActivityTypePostCreated, nil)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 20, f.total(t, user.ID))
}

func TestConcurrentCheckInsGrantOnce(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "ivy")

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeDailyCheckIn, nil)
			assert.NoError(t, err)
			results[i] = granted
		}(i)
	}
	wg.Wait()

	grants := 0
	for _, g := range results {
		if g {
			grants++
		}
	}
	assert.Equal(t, 1, grants)
	assert.Equal(t, 10, f.total(t, user.ID))
}

func TestRecalculateTotalRepairsDrift(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "jack")

	_, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypeSignUp, nil)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&entity.User{}).Where("id = ?", user.ID).UpdateColumn("activity_points", 999).Error)

	res, err := f.svc.RecalculateTotal(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.ActivityPoints)
	assert.Equal(t, 100, f.total(t, user.ID))

	_, err = f.svc.RecalculateTotal(ctx, 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetHistoryPaginates(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	user := f.createUser(t, "kate")

	for i := 0; i < 3; i++ {
		f.clock = f.clock.Add(time.Minute)
		_, err := f.svc.AddPoint(ctx, user.ID, entity.ActivityTypePostCreated, Reason("post:%d", i))
		require.NoError(t, err)
	}

	res, err := f.svc.GetHistory(ctx, user.ID, pointDto.HistoryFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.EqualValues(t, 3, res.Meta.TotalItems)
	assert.Equal(t, 2, res.Meta.TotalPages)
	assert.Equal(t, "post:2", *res.Data[0].Reason)
	assert.Equal(t, 20, res.Data[0].Point)
}

func TestGetLeaderboard(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()
	low := f.createUser(t, "low")
	high := f.createUser(t, "high")

	_, err := f.svc.AddPoint(ctx, low.ID, entity.ActivityTypeDailyCheckIn, nil)
	require.NoError(t, err)
	_, err = f.svc.AddPoint(ctx, high.ID, entity.ActivityTypeSignUp, nil)
	require.NoError(t, err)

	entries, err := f.svc.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, high.ID, entries[0].UserID)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "Member", entries[0].RankStatus.RankName)
	assert.Equal(t, 100, entries[0].RankStatus.WeeklyPoints)
	assert.Equal(t, "On Fire", entries[0].RankStatus.WeeklyLabel)
	assert.Equal(t, "Newcomer", entries[1].RankStatus.RankName)
}

type failingRepo struct {
	pointRepo.PointRepository
	user *entity.User
}

func (r *failingRepo) Transaction(ctx context.Context, fn func(repo pointRepo.PointRepository) error) error {
	return fn(r)
}

func (r *failingRepo) LockUser(ctx context.Context, userID uint) (*entity.User, error) {
	return r.user, nil
}

func (r *failingRepo) FindActivityType(ctx context.Context, typeID uint) (*entity.ActivityType, error) {
	return &entity.ActivityType{ID: typeID, Point: 10}, nil
}

func (r *failingRepo) CreateLog(ctx context.Context, log *entity.ActivityLog) error {
	return errors.New("disk full")
}

func TestAddPointPropagatesStorageErrors(t *testing.T) {
	svc := NewPointService(&failingRepo{user: &entity.User{ID: 1}}, time.UTC)

	granted, err := svc.AddPoint(context.Background(), 1, entity.ActivityTypeSignUp, nil)
	assert.Error(t, err)
	assert.False(t, granted)
}
