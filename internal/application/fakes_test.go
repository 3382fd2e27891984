package application

import (
	"context"
	"errors"
	"sync"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"
	"jarvis-integrations-layer/internal/ports"
)

type fakeIntegrationRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.Integration // key: userID + "/" + service
	deleted []string
}

func newFakeIntegrationRepo() *fakeIntegrationRepo {
	return &fakeIntegrationRepo{rows: make(map[string]*domain.Integration)}
}

func (f *fakeIntegrationRepo) key(userID, service string) string { return userID + "/" + service }

func (f *fakeIntegrationRepo) Upsert(_ context.Context, i *domain.Integration) (*domain.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *i
	f.rows[f.key(i.UserID, i.Service)] = &cp
	out := cp
	return &out, nil
}

func (f *fakeIntegrationRepo) Get(_ context.Context, userID, service string) (*domain.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[f.key(userID, service)]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeIntegrationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Integration
	for _, row := range f.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeIntegrationRepo) UpdateStatus(_ context.Context, userID, service string, status domain.IntegrationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[f.key(userID, service)]
	if !ok {
		return errors.New("integration not found")
	}
	row.Status = status
	return nil
}

func (f *fakeIntegrationRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, row := range f.rows {
		if row.ID == id {
			delete(f.rows, k)
			f.deleted = append(f.deleted, k)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIntegrationRepo) DeleteByUserAndService(_ context.Context, userID, service string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(userID, service)
	if _, ok := f.rows[k]; !ok {
		return false, nil
	}
	delete(f.rows, k)
	f.deleted = append(f.deleted, k)
	return true, nil
}

type fakeRequestRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.CompletionRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: make(map[string]*domain.CompletionRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *domain.CompletionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[req.RequestID]; ok {
		return errors.New("duplicate request id")
	}
	cp := *req
	f.rows[req.RequestID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByRequestID(_ context.Context, requestID string) (*domain.CompletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[requestID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, requestID string, status domain.RequestStatus, meta *domain.RequestMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	row.Status = status
	if meta != nil {
		row.Metadata = *meta
	}
	return nil
}

func (f *fakeRequestRepo) SetConversationID(_ context.Context, requestID, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	row.ConversationID = conversationID
	return nil
}

type fakeAssistant struct {
	reply *ports.AssistantReply
	err   error
	calls int
}

func (f *fakeAssistant) CompleteIntegration(_ context.Context, _, _, _, _ string) (*ports.AssistantReply, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]*ports.AuthState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]*ports.AuthState)}
}

func (f *fakeStateStore) Save(_ context.Context, state *ports.AuthState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *state
	f.states[state.State] = &cp
	return nil
}

func (f *fakeStateStore) Consume(_ context.Context, state string) (*ports.AuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.states[state]
	if !ok {
		return nil, nil
	}
	delete(f.states, state)
	return record, nil
}

type fakeExchanger struct {
	tokens      *domain.TokenSet
	err         error
	refreshed   *domain.TokenSet
	refreshErr  error
	gotCode     string
	gotVerifier string
	gotRefresh  string
}

func (f *fakeExchanger) Exchange(_ context.Context, _ providers.Config, code, codeVerifier string) (*domain.TokenSet, error) {
	f.gotCode = code
	f.gotVerifier = codeVerifier
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

func (f *fakeExchanger) Refresh(_ context.Context, _ providers.Config, refreshToken string) (*domain.TokenSet, error) {
	f.gotRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}
