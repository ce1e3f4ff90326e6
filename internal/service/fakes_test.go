package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/dataset_request_bot/internal/encryption"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository"
)

// memStore - хранилище в памяти с семантикой репозиториев PostgreSQL
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[int64]*model.User
	dataModels map[int64]*model.DataModel
	requests   map[int64]*model.Request

	readErr     error
	writeErr    error
	decisionErr error
	writes      int
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[int64]*model.User),
		dataModels: make(map[int64]*model.DataModel),
		requests:   make(map[int64]*model.Request),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addUser(u model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.id()
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) addDataModel(dm model.DataModel) *model.DataModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	dm.ID = m.id()
	m.dataModels[dm.ID] = &dm
	return &dm
}

func (m *memStore) addRequest(r model.Request) *model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.id()
	r.CreatedAt = time.Now()
	m.requests[r.ID] = &r
	cp := r
	return &cp
}

func (m *memStore) request(id int64) model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

// requestStore, userStore и dataModelStore делят одно состояние,
// но реализуют разные интерфейсы с пересекающимися именами методов
type requestStore struct{ *memStore }
type userStore struct{ *memStore }
type dataModelStore struct{ *memStore }

func (s requestStore) Create(_ context.Context, req *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	req.ID = s.id()
	req.CreatedAt = time.Now()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s requestStore) GetByID(_ context.Context, id int64) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s requestStore) details(r *model.Request) *model.RequestDetails {
	cp := *r
	d := &model.RequestDetails{Request: &cp}
	if u, ok := s.users[r.RequestingUserID]; ok {
		uc := *u
		d.User = &uc
	}
	if dm, ok := s.dataModels[r.DataModelID]; ok {
		dc := *dm
		d.DataModel = &dc
	}
	return d
}

func (s requestStore) GetDetails(_ context.Context, id int64) (*model.RequestDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return s.details(r), nil
}

func (s requestStore) list(filter func(*model.Request) bool) []*model.RequestDetails {
	ids := make([]int64, 0, len(s.requests))
	for id, r := range s.requests {
		if filter(r) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := make([]*model.RequestDetails, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.details(s.requests[id]))
	}
	return out
}

func (s requestStore) ListDetails(_ context.Context) ([]*model.RequestDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.list(func(*model.Request) bool { return true }), nil
}

func (s requestStore) ListDetailsByUser(_ context.Context, userID int64) ([]*model.RequestDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.list(func(r *model.Request) bool { return r.RequestingUserID == userID }), nil
}

func (s requestStore) SetDecision(_ context.Context, id int64, granted, denied bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decisionErr != nil {
		return s.decisionErr
	}
	r, ok := s.requests[id]
	if !ok || r.Downloaded {
		return repository.ErrNotFound
	}
	s.writes++
	r.Granted, r.Denied = granted, denied
	now := time.Now()
	r.UpdatedAt = &now
	return nil
}

func (s requestStore) MarkDownloaded(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	r, ok := s.requests[id]
	if !ok || !r.Granted {
		return repository.ErrNotFound
	}
	s.writes++
	r.Downloaded = true
	return nil
}

func (s requestStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	n := int64(len(s.requests))
	s.requests = make(map[int64]*model.Request)
	return n, nil
}

func (s userStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s userStore) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s userStore) List(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s dataModelStore) Create(_ context.Context, dm *model.DataModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	dm.ID = s.id()
	cp := *dm
	s.dataModels[dm.ID] = &cp
	return nil
}

func (s dataModelStore) GetByID(_ context.Context, id int64) (*model.DataModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dm, ok := s.dataModels[id]
	if !ok {
		return nil, nil
	}
	cp := *dm
	return &cp, nil
}

func (s dataModelStore) GetByDisplayName(_ context.Context, displayName string) (*model.DataModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	for _, dm := range s.dataModels {
		if dm.DisplayName == displayName {
			cp := *dm
			return &cp, nil
		}
	}
	return nil, nil
}

func (s dataModelStore) List(_ context.Context) ([]*model.DataModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.DataModel, 0, len(s.dataModels))
	for _, dm := range s.dataModels {
		cp := *dm
		out = append(out, &cp)
	}
	return out, nil
}

func (s dataModelStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dataModels[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.dataModels, id)
	return nil
}

// racingRequests выполняет afterRead сразу после GetDetails,
// имитируя запись, которая успела между чтением и изменением
type racingRequests struct {
	requestStore
	afterRead func()
}

func (r racingRequests) GetDetails(ctx context.Context, id int64) (*model.RequestDetails, error) {
	d, err := r.requestStore.GetDetails(ctx, id)
	if r.afterRead != nil {
		r.afterRead()
	}
	return d, err
}

// fakeGateway создаёт архив по job.ArchivePath или возвращает err
type fakeGateway struct {
	mu   sync.Mutex
	err  error
	jobs []encryption.Job
}

func (g *fakeGateway) Encrypt(_ context.Context, job encryption.Job) (*encryption.Result, error) {
	g.mu.Lock()
	g.jobs = append(g.jobs, job)
	err := g.err
	g.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(job.ArchivePath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(job.ArchivePath, []byte("encrypted"), 0o600); err != nil {
		return nil, err
	}
	return &encryption.Result{ArchivePath: job.ArchivePath, Command: "fake"}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.jobs)
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []model.RequestUpdate
}

func (p *recordingPublisher) PublishUpdate(_ context.Context, update model.RequestUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}

func (p *recordingPublisher) published() []model.RequestUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.RequestUpdate(nil), p.updates...)
}
