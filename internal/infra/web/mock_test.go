//go:build !integration

package web

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"sim-activation-portal/internal/config"
	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	"sim-activation-portal/internal/usecase"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

//
// ---------------- in-memory infra mocks (repos/tx/inventory) ----------------
//

type memOfferRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.SubscriptionOffer
	errList error
}

func newMemOfferRepo(offers ...*model.SubscriptionOffer) *memOfferRepo {
	m := &memOfferRepo{byID: map[string]*model.SubscriptionOffer{}}
	for _, o := range offers {
		m.byID[o.ID] = o
	}
	return m
}

func (m *memOfferRepo) Save(ctx context.Context, tx repository.Tx, o *model.SubscriptionOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOfferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOfferRepo) ListActive(ctx context.Context, tx repository.Tx, featuredOnly bool) ([]*model.SubscriptionOffer, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.SubscriptionOffer, 0, len(m.byID))
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

type memUserRepo struct {
	byID map[string]*model.User
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type stubInventory struct {
	resp *model.SimAvailability
	err  error
}

func (s *stubInventory) Availability(ctx context.Context, serial string) (*model.SimAvailability, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.resp
	return &cp, nil
}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	txCtx, commit := repository.WithAfterCommit(ctx)
	if err := fn(txCtx, nil); err != nil {
		return err
	}
	commit()
	return nil
}

//
// -------------------- test helpers --------------------
//

const testSecret = "test-session-secret-0123456789abcdef"

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type testEnv struct {
	handler http.Handler
	offers  *memOfferRepo
	users   *memUserRepo
	auth    *AuthManager
}

func newTestEnv(inv *stubInventory, offers ...*model.SubscriptionOffer) *testEnv {
	log := newLogger()
	env := &testEnv{
		offers: newMemOfferRepo(offers...),
		users:  &memUserRepo{byID: map[string]*model.User{}},
		auth: NewAuthManager(config.SessionConfig{
			Secret: testSecret,
			TTL:    time.Hour,
		}),
	}
	offerUC := usecase.NewOfferUseCase(env.offers, &mockTxManager{}, log)
	simUC := usecase.NewSimUseCase(inv, log, true)
	activationUC := usecase.NewActivationUseCase(simUC, offerUC, env.users, "/dashboard-user/settings", log)
	userUC := usecase.NewUserUseCase(env.users, &mockTxManager{}, log)
	env.handler = NewServer(activationUC, offerUC, userUC, env.auth, 5*time.Second, log).Routes()
	return env
}

func (e *testEnv) tokenFor(id string, role model.Role) string {
	tok, err := e.auth.Token(id, role)
	if err != nil {
		panic(err)
	}
	return tok
}
