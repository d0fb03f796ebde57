//go:build !integration

package usecase

import (
	"context"
	"io"
	"sort"
	"sync"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// --- Mock TxManager

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately without a real transaction unless WithTxFunc is
// set. AfterCommit callbacks run when fn succeeds.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	txCtx, commit := repository.WithAfterCommit(ctx)
	if err := fn(txCtx, nil); err != nil {
		return err
	}
	commit()
	return nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- In-memory offer repository

type memOfferRepo struct {
	mu      sync.RWMutex
	byID    map[string]*model.SubscriptionOffer
	listErr error
	saveErr error
	// onList runs at the start of ListActive when set.
	onList func()
}

func newMemOfferRepo(offers ...*model.SubscriptionOffer) *memOfferRepo {
	m := &memOfferRepo{byID: map[string]*model.SubscriptionOffer{}}
	for _, o := range offers {
		m.byID[o.ID] = o
	}
	return m
}

var _ repository.OfferRepository = (*memOfferRepo)(nil)

func (m *memOfferRepo) Save(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) ListActive(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	if m.onList != nil {
		m.onList()
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubscriptionOffer
	for _, o := range m.byID {
		if o.IsArchived || (featuredOnly && !o.IsFeatured) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOfferRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// --- In-memory user repository

type memUserRepo struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	findErr error
	onFind  func()
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	m := &memUserRepo{byID: map[string]*model.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if m.onFind != nil {
		m.onFind()
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// --- Stub SIM inventory

type stubInventory struct {
	mu    sync.Mutex
	calls int
	resp  *model.SimAvailability
	err   error
	onGet func()
}

func (s *stubInventory) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.onGet != nil {
		s.onGet()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.resp == nil {
		return &model.SimAvailability{Serial: serial}, nil
	}
	cp := *s.resp
	return &cp, nil
}

func (s *stubInventory) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
