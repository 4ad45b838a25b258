package recycling

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"serotonyl.ru/ecobot/internal/common"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
)

var errInjected = errors.New("сбой БД")

type ownKey struct{ user, companion int64 }

type grantKey struct{ user, badge int64 }

// memState: содержимое «базы», копируется целиком для отката.
type memState struct {
	nextID    int64
	events    []Event
	progress  map[int64]Progress
	grants    map[grantKey]bool
	ownership map[ownKey]int
}

func (s memState) clone() memState {
	c := memState{
		nextID:    s.nextID,
		events:    append([]Event(nil), s.events...),
		progress:  make(map[int64]Progress, len(s.progress)),
		grants:    make(map[grantKey]bool, len(s.grants)),
		ownership: make(map[ownKey]int, len(s.ownership)),
	}
	for k, v := range s.progress {
		c.progress[k] = v
	}
	for k, v := range s.grants {
		c.grants[k] = v
	}
	for k, v := range s.ownership {
		c.ownership[k] = v
	}
	return c
}

// memStore: хранилище в памяти с транзакциями «всё или ничего».
type memStore struct {
	state      memState
	badges     []badges.Badge
	companions map[int64]companion.Companion
	stages     map[int64][]companion.Stage
	failOn     string // имя операции Tx, которая вернёт ошибку
	commits    int
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			nextID:    1,
			progress:  map[int64]Progress{},
			grants:    map[grantKey]bool{},
			ownership: map[ownKey]int{},
		},
		companions: map[int64]companion.Companion{},
		stages:     map[int64][]companion.Stage{},
	}
}

func (m *memStore) WithUserTx(ctx context.Context, userID int64, fn func(Tx) error) error {
	work := m.state.clone()
	if _, ok := work.progress[userID]; !ok {
		work.progress[userID] = Progress{UserID: userID}
	}
	if err := fn(&memTx{store: m, st: &work}); err != nil {
		return err
	}
	m.state = work
	m.commits++
	return nil
}

func (m *memStore) CountEvents(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for _, e := range m.state.events {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListEvents(ctx context.Context, userID int64, limit, offset int) ([]Event, error) {
	var own []Event
	for _, e := range m.state.events {
		if e.UserID == userID {
			own = append(own, e)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].ID > own[j].ID })
	if offset >= len(own) {
		return []Event{}, nil
	}
	end := offset + limit
	if end > len(own) {
		end = len(own)
	}
	return own[offset:end], nil
}

func (m *memStore) progress(userID int64) Progress {
	return m.state.progress[userID]
}

func (m *memStore) stageOf(userID, companionID int64) int {
	return m.state.ownership[ownKey{userID, companionID}]
}

func (m *memStore) setProgress(p Progress) {
	m.state.progress[p.UserID] = p
}

type memTx struct {
	store *memStore
	st    *memState
}

func (t *memTx) fail(op string) error {
	if t.store.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) LockProgress(ctx context.Context, userID int64) (*Progress, error) {
	if err := t.fail("LockProgress"); err != nil {
		return nil, err
	}
	p := t.st.progress[userID]
	return &p, nil
}

func (t *memTx) SaveProgress(ctx context.Context, p *Progress) error {
	if err := t.fail("SaveProgress"); err != nil {
		return err
	}
	t.st.progress[p.UserID] = *p
	return nil
}

func (t *memTx) InsertEvent(ctx context.Context, e *Event) error {
	if err := t.fail("InsertEvent"); err != nil {
		return err
	}
	e.ID = t.st.nextID
	t.st.nextID++
	t.st.events = append(t.st.events, *e)
	return nil
}

func (t *memTx) Counts(ctx context.Context, userID int64) (Counts, error) {
	if err := t.fail("Counts"); err != nil {
		return Counts{}, err
	}
	var c Counts
	for _, e := range t.st.events {
		if e.UserID == userID {
			c.Logs++
			c.Items += int64(e.ItemCount)
		}
	}
	return c, nil
}

func (t *memTx) Ungranted(ctx context.Context, userID int64) ([]badges.Badge, error) {
	var out []badges.Badge
	for _, b := range t.store.badges {
		if !t.st.grants[grantKey{userID, b.ID}] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *memTx) GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	if err := t.fail("GrantBadge"); err != nil {
		return false, err
	}
	k := grantKey{userID, badgeID}
	if t.st.grants[k] {
		return false, nil
	}
	t.st.grants[k] = true
	return true, nil
}

func (t *memTx) Companion(ctx context.Context, id int64) (*companion.Companion, error) {
	c, ok := t.store.companions[id]
	if !ok {
		return nil, common.ErrCompanionNotFound
	}
	return &c, nil
}

func (t *memTx) Ownership(ctx context.Context, userID, companionID int64) (*companion.Ownership, error) {
	stage, ok := t.st.ownership[ownKey{userID, companionID}]
	if !ok {
		return nil, nil
	}
	return &companion.Ownership{UserID: userID, CompanionID: companionID, CurrentStage: stage}, nil
}

func (t *memTx) StageAt(ctx context.Context, companionID int64, number int) (*companion.Stage, error) {
	for _, s := range t.store.stages[companionID] {
		if s.Number == number {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (t *memTx) AdvanceStage(ctx context.Context, userID, companionID int64, stage int) error {
	if err := t.fail("AdvanceStage"); err != nil {
		return err
	}
	k := ownKey{userID, companionID}
	if cur, ok := t.st.ownership[k]; ok && cur < stage {
		t.st.ownership[k] = stage
	}
	return nil
}

func (t *memTx) DeleteEvent(ctx context.Context, userID, eventID int64) (*Event, error) {
	if err := t.fail("DeleteEvent"); err != nil {
		return nil, err
	}
	for i, e := range t.st.events {
		if e.ID == eventID && e.UserID == userID {
			t.st.events = append(t.st.events[:i:i], t.st.events[i+1:]...)
			return &e, nil
		}
	}
	return nil, nil
}

func (t *memTx) SubtractTotals(ctx context.Context, userID int64, carbon, water float64) error {
	if err := t.fail("SubtractTotals"); err != nil {
		return err
	}
	p := t.st.progress[userID]
	p.TotalCarbonSaved = math.Max(0, p.TotalCarbonSaved-carbon)
	p.TotalWaterSaved = math.Max(0, p.TotalWaterSaved-water)
	t.st.progress[userID] = p
	return nil
}

// fakeRecorder считает вызовы метрик.
type fakeRecorder struct {
	submitted map[string]int
	removed   int
	badges    int
	evolved   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{submitted: map[string]int{}}
}

func (r *fakeRecorder) EventSubmitted(material string) { r.submitted[material]++ }
func (r *fakeRecorder) EventRemoved()                  { r.removed++ }
func (r *fakeRecorder) BadgesGranted(n int)            { r.badges += n }
func (r *fakeRecorder) Evolution()                     { r.evolved++ }

// clock: управляемые часы для тестов.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) addDays(n int) { c.t = c.t.AddDate(0, 0, n) }
