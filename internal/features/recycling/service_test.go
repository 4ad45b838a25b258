package recycling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/streak"
)

const (
	userID  = int64(1001)
	panda   = int64(1)
	epsilon = 1e-9
)

type fixture struct {
	store *memStore
	rec   *fakeRecorder
	clock *clock
	inv   *countingInvalidator
	svc   *Service
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.calls++
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc := time.UTC
	store := newMemStore()
	store.badges = []badges.Badge{
		{ID: 1, Code: "first_step", Name: "Первый шаг", Criterion: badges.TotalLogs{N: 1}},
		{ID: 2, Code: "two_days", Name: "Два дня", Criterion: badges.Streak{Days: 2}},
		{ID: 3, Code: "hundred", Name: "Сотня", Criterion: badges.TotalItems{N: 100}},
		{ID: 4, Code: "five_kilo", Name: "Пять кило CO₂", Criterion: badges.CarbonSaved{Kg: 5.0}},
	}
	store.companions[panda] = companion.Companion{ID: panda, Name: "Панда", Emoji: "🐼"}
	store.stages[panda] = []companion.Stage{
		{CompanionID: panda, Number: 1, PointsRequired: 0, Name: "Малыш"},
		{CompanionID: panda, Number: 2, PointsRequired: 150, Name: "Детёныш"},
		{CompanionID: panda, Number: 3, PointsRequired: 500, Name: "Подросток"},
		{CompanionID: panda, Number: 4, PointsRequired: 1500, Name: "Взрослый"},
		{CompanionID: panda, Number: 5, PointsRequired: 4000, Name: "Легенда"},
	}

	c := &clock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, loc)}
	rec := newFakeRecorder()
	inv := &countingInvalidator{}
	svc := NewService(store, rec, loc).WithInvalidators(inv)
	svc.now = c.now
	return &fixture{store: store, rec: rec, clock: c, inv: inv, svc: svc}
}

func (f *fixture) selectPanda(stage int, points int64) {
	cid := panda
	f.store.state.ownership[ownKey{userID, panda}] = stage
	f.store.setProgress(Progress{UserID: userID, SelectedCompanionID: &cid, CompanionPoints: points})
}

func TestSubmit_ComputesImpact(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), userID, impact.Aluminum, 10)
	require.NoError(t, err)

	assert.InDelta(t, 1.2782, res.Event.CarbonSaved, epsilon)
	assert.InDelta(t, 5.6, res.Event.WaterSaved, epsilon)
	assert.Equal(t, int64(70), res.PointsEarned)
	assert.Equal(t, 1, res.StreakCurrent)
	assert.NotZero(t, res.Event.ID)

	p := f.store.progress(userID)
	assert.InDelta(t, 1.2782, p.TotalCarbonSaved, epsilon)
	assert.InDelta(t, 5.6, p.TotalWaterSaved, epsilon)
	assert.Equal(t, int64(70), p.CompanionPoints)
	assert.Equal(t, 1, f.rec.submitted["aluminum"])
}

func TestSubmit_ValidationBeforeMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, userID, impact.Material("wood"), 1)
	assert.True(t, errors.Is(err, common.ErrInvalidMaterial))
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = f.svc.Submit(ctx, userID, impact.Glass, 0)
	assert.True(t, errors.Is(err, common.ErrInvalidQuantity))

	_, err = f.svc.Submit(ctx, userID, impact.Glass, 1000)
	assert.True(t, errors.Is(err, common.ErrInvalidQuantity))

	assert.Zero(t, f.store.commits)
	assert.Empty(t, f.store.state.events)
}

func TestSubmit_Streak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, userID, impact.Paper, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StreakCurrent)
	assert.Equal(t, streak.Reset, res.StreakChange)

	// второй раз в тот же день: без изменений
	res, err = f.svc.Submit(ctx, userID, impact.Paper, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StreakCurrent)
	assert.Equal(t, streak.Kept, res.StreakChange)

	f.clock.addDays(1)
	res, err = f.svc.Submit(ctx, userID, impact.Paper, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.StreakCurrent)
	assert.Equal(t, streak.Extended, res.StreakChange)

	f.clock.addDays(1)
	res, err = f.svc.Submit(ctx, userID, impact.Paper, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.StreakCurrent)

	// пропуск двух дней: серия с начала, рекорд сохраняется
	f.clock.addDays(3)
	res, err = f.svc.Submit(ctx, userID, impact.Paper, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StreakCurrent)

	p := f.store.progress(userID)
	assert.Equal(t, 3, p.Streak.Best)
	assert.Equal(t, 1, p.Streak.Current)
}

func TestSubmit_Badges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, userID, impact.Plastic, 1)
	require.NoError(t, err)
	require.Len(t, res.NewBadges, 1)
	assert.Equal(t, "first_step", res.NewBadges[0].Code)

	// уже полученный значок не выдаётся повторно; можно получить несколько сразу
	f.clock.addDays(1)
	res, err = f.svc.Submit(ctx, userID, impact.Plastic, 99)
	require.NoError(t, err)
	codes := make([]string, 0, len(res.NewBadges))
	for _, b := range res.NewBadges {
		codes = append(codes, b.Code)
	}
	assert.ElementsMatch(t, []string{"two_days", "hundred"}, codes)
	assert.Equal(t, 3, f.rec.badges)

	res, err = f.svc.Submit(ctx, userID, impact.Plastic, 1)
	require.NoError(t, err)
	assert.Empty(t, res.NewBadges)
}

func TestSubmit_CompanionEvolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectPanda(2, 450)

	// 12 × пластик = 60 очков → 510 ≥ 500
	res, err := f.svc.Submit(ctx, userID, impact.Plastic, 12)
	require.NoError(t, err)
	require.NotNil(t, res.Evolution)
	assert.Equal(t, 3, res.Evolution.NewStage)
	assert.Equal(t, "Подросток", res.Evolution.StageName)
	assert.Equal(t, "Панда", res.Evolution.CompanionName)
	assert.Equal(t, 3, f.store.stageOf(userID, panda))

	// ещё 40 очков → 550 < 1500
	res, err = f.svc.Submit(ctx, userID, impact.Plastic, 8)
	require.NoError(t, err)
	assert.Nil(t, res.Evolution)
	assert.Equal(t, 3, f.store.stageOf(userID, panda))
	assert.Equal(t, int64(550), f.store.progress(userID).CompanionPoints)
	assert.Equal(t, 1, f.rec.evolved)
}

func TestSubmit_OneStagePerEvent(t *testing.T) {
	f := newFixture(t)
	f.selectPanda(1, 0)

	// 999 × алюминий = 6993 очка, хватает до пятой стадии, но переход один
	res, err := f.svc.Submit(context.Background(), userID, impact.Aluminum, 999)
	require.NoError(t, err)
	require.NotNil(t, res.Evolution)
	assert.Equal(t, 2, res.Evolution.NewStage)
	assert.Equal(t, 2, f.store.stageOf(userID, panda))
}

func TestSubmit_MaxStageNeverEvolves(t *testing.T) {
	f := newFixture(t)
	f.selectPanda(companion.MaxStage, 100_000)

	res, err := f.svc.Submit(context.Background(), userID, impact.Steel, 999)
	require.NoError(t, err)
	assert.Nil(t, res.Evolution)
	assert.Equal(t, companion.MaxStage, f.store.stageOf(userID, panda))
}

func TestSubmit_PointsAccrueWithoutCompanion(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), userID, impact.Glass, 100)
	require.NoError(t, err)
	assert.Nil(t, res.Evolution)
	assert.Equal(t, int64(500), f.store.progress(userID).CompanionPoints)
}

func TestSubmit_SelectedButNotOwned(t *testing.T) {
	f := newFixture(t)
	cid := panda
	f.store.setProgress(Progress{UserID: userID, SelectedCompanionID: &cid, CompanionPoints: 1000})

	res, err := f.svc.Submit(context.Background(), userID, impact.Glass, 1)
	require.NoError(t, err)
	assert.Nil(t, res.Evolution)
	assert.Zero(t, f.store.stageOf(userID, panda))
}

func TestSubmit_RollbackOnFailure(t *testing.T) {
	for _, op := range []string{"InsertEvent", "SaveProgress", "AdvanceStage", "Counts", "GrantBadge"} {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t)
			f.selectPanda(2, 450)
			before := f.store.progress(userID)
			f.store.failOn = op

			_, err := f.svc.Submit(context.Background(), userID, impact.Plastic, 12)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrStorage))
			assert.Equal(t, "Что-то пошло не так, попробуйте позже", common.UserMessage(err))

			assert.Empty(t, f.store.state.events)
			assert.Equal(t, before, f.store.progress(userID))
			assert.Equal(t, 2, f.store.stageOf(userID, panda))
			assert.Empty(t, f.store.state.grants)
			assert.Empty(t, f.rec.submitted)
			assert.Zero(t, f.inv.calls)
		})
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("Only event drives totals to zero", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Submit(ctx, userID, impact.Aluminum, 10)
		require.NoError(t, err)

		require.NoError(t, f.svc.Remove(ctx, userID, res.Event.ID))

		p := f.store.progress(userID)
		assert.Equal(t, 0.0, p.TotalCarbonSaved)
		assert.Equal(t, 0.0, p.TotalWaterSaved)
		assert.Empty(t, f.store.state.events)
		assert.Equal(t, 1, f.rec.removed)
		// сдача и удаление
		assert.Equal(t, 2, f.inv.calls)
	})

	t.Run("Totals never go negative", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Submit(ctx, userID, impact.Glass, 3)
		require.NoError(t, err)

		p := f.store.progress(userID)
		p.TotalCarbonSaved -= 0.0001
		f.store.setProgress(p)

		require.NoError(t, f.svc.Remove(ctx, userID, res.Event.ID))
		assert.Equal(t, 0.0, f.store.progress(userID).TotalCarbonSaved)
	})

	t.Run("Streak badges and companion untouched", func(t *testing.T) {
		f := newFixture(t)
		f.selectPanda(2, 450)
		res, err := f.svc.Submit(ctx, userID, impact.Plastic, 12)
		require.NoError(t, err)
		require.NotNil(t, res.Evolution)

		require.NoError(t, f.svc.Remove(ctx, userID, res.Event.ID))

		p := f.store.progress(userID)
		assert.Equal(t, 1, p.Streak.Current)
		assert.Equal(t, int64(510), p.CompanionPoints)
		assert.Equal(t, 3, f.store.stageOf(userID, panda))
		assert.True(t, f.store.state.grants[grantKey{userID, 1}])
	})

	t.Run("Foreign event is not found", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Submit(ctx, userID, impact.Paper, 2)
		require.NoError(t, err)

		err = f.svc.Remove(ctx, 2002, res.Event.ID)
		assert.True(t, errors.Is(err, common.ErrEventNotFound))
		assert.True(t, errors.Is(err, common.ErrNotFound))
		assert.Len(t, f.store.state.events, 1)
		assert.Zero(t, f.rec.removed)
		assert.Equal(t, 1, f.inv.calls)
	})

	t.Run("Rollback when totals update fails", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.svc.Submit(ctx, userID, impact.Paper, 2)
		require.NoError(t, err)
		f.store.failOn = "SubtractTotals"

		err = f.svc.Remove(ctx, userID, res.Event.ID)
		assert.True(t, errors.Is(err, common.ErrStorage))
		assert.Len(t, f.store.state.events, 1)
		assert.InDelta(t, res.Event.CarbonSaved, f.store.progress(userID).TotalCarbonSaved, epsilon)
	})
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := f.svc.Submit(ctx, userID, impact.Glass, i)
		require.NoError(t, err)
	}
	_, err := f.svc.Submit(ctx, 2002, impact.Glass, 1)
	require.NoError(t, err)

	page, err := f.svc.List(ctx, userID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Events, DefaultPageSize)
	assert.Equal(t, 25, page.Events[0].ItemCount)

	page, err = f.svc.List(ctx, userID, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page.Events, 5)

	page, err = f.svc.List(ctx, userID, 1, 500)
	require.NoError(t, err)
	assert.Len(t, page.Events, 25)
	assert.Equal(t, 1, page.Pages)

	page, err = f.svc.List(ctx, 3003, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.Pages)
	assert.Empty(t, page.Events)
}

func TestParsePage(t *testing.T) {
	n, err := ParsePage(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, bad := range []string{"0", "-1", "abc", "3abc"} {
		_, err := ParsePage(bad)
		assert.True(t, errors.Is(err, common.ErrInvalidPage), bad)
	}
}
