package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

var errStore = errors.New("store unavailable")

type fakeQuestionRepo struct {
	questions []*model.Question
	err       error
	calls     atomic.Int32
}

func (f *fakeQuestionRepo) FindByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Question
	for _, q := range f.questions {
		if q.QuestionnaireID == questionnaireID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) FindByID(ctx context.Context, id string) (*model.Question, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestionRepo) FindWithDimension(ctx context.Context, questionnaireID string) ([]*model.Question, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Question
	for _, q := range f.questions {
		if q.QuestionnaireID == questionnaireID && q.DimensionKey != nil {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) SaveSection(ctx context.Context, section *model.Section) error {
	return nil
}

func (f *fakeQuestionRepo) Save(ctx context.Context, question *model.Question) error {
	f.questions = append(f.questions, question)
	return nil
}

type fakeRuleRepo struct {
	rules []*model.VisibilityRule
	err   error
}

func (f *fakeRuleRepo) filter(keep func(r *model.VisibilityRule) bool) ([]*model.VisibilityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.VisibilityRule
	for _, r := range f.rules {
		if r.IsActive && keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) FindActiveForQuestion(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return f.filter(func(r *model.VisibilityRule) bool {
		return r.QuestionID == questionID || r.Targets(questionID)
	})
}

func (f *fakeRuleRepo) FindActiveOwnedBy(ctx context.Context, questionID string) ([]*model.VisibilityRule, error) {
	return f.filter(func(r *model.VisibilityRule) bool { return r.QuestionID == questionID })
}

func (f *fakeRuleRepo) FindActiveByQuestionnaire(ctx context.Context, questionnaireID string) ([]*model.VisibilityRule, error) {
	return f.filter(func(r *model.VisibilityRule) bool { return r.QuestionnaireID == questionnaireID })
}

func (f *fakeRuleRepo) Save(ctx context.Context, rule *model.VisibilityRule) error {
	f.rules = append(f.rules, rule)
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session
	err      error
	calls    atomic.Int32
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if f.sessions == nil {
		f.sessions = make(map[string]*model.Session)
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[id], nil
}

type fakeResponseRepo struct {
	bySession map[string][]*model.Response
	err       error
	calls     atomic.Int32
}

func (f *fakeResponseRepo) Save(ctx context.Context, response *model.Response) error {
	if f.bySession == nil {
		f.bySession = make(map[string][]*model.Response)
	}
	f.bySession[response.SessionID] = append(f.bySession[response.SessionID], response)
	return nil
}

func (f *fakeResponseRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.Response, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.bySession[sessionID], nil
}

type fakeDimensionRepo struct {
	dims  []*model.Dimension
	err   error
	calls atomic.Int32
}

func (f *fakeDimensionRepo) GetActive(ctx context.Context) ([]*model.Dimension, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.dims, nil
}

func (f *fakeDimensionRepo) Upsert(ctx context.Context, dim *model.Dimension) error {
	f.dims = append(f.dims, dim)
	return nil
}

type fakeHeatmapCache struct {
	mu        sync.Mutex
	items     map[string]*model.HeatmapResult
	getErr    error
	setErr    error
	deleteErr error
	sets      int
	deletes   []string
}

func newFakeHeatmapCache() *fakeHeatmapCache {
	return &fakeHeatmapCache{items: make(map[string]*model.HeatmapResult)}
}

func (f *fakeHeatmapCache) Get(ctx context.Context, sessionID string) (*model.HeatmapResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.items[sessionID], nil
}

func (f *fakeHeatmapCache) Set(ctx context.Context, result *model.HeatmapResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.items[result.SessionID] = result
	return nil
}

func (f *fakeHeatmapCache) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, sessionID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.items, sessionID)
	return nil
}

type sentEvent struct {
	sessionID string
	msgType   string
	payload   any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeBroadcaster) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{sessionID, msgType, payload})
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }
