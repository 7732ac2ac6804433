package store

import (
	"errors"
	"sync"
	"time"

	"github.com/blackinbot/backend/types"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// MemoryStore is a mutex-guarded in-memory implementation of types.Store.
// It backs tests and local development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*types.Account
	bots     map[string]*types.Bot
	plans    map[string]*types.Plan
	sales    map[string]*types.Sale
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*types.Account),
		bots:     make(map[string]*types.Bot),
		plans:    make(map[string]*types.Plan),
		sales:    make(map[string]*types.Sale),
	}
}

func (s *MemoryStore) CreateAccount(a *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return errors.New("email already registered")
		}
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) GetAccount(id string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) GetAccountByEmail(email string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateAccount(a *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *MemoryStore) CreateBot(b *types.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	s.bots[b.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBot(id, accountID string) (*types.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bots[id]
	if !ok || b.AccountID != accountID {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetBotByID(id string) (*types.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bots[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetBotByToken(token string) (*types.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bots {
		if b.BotToken == token {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListBots(accountID string) ([]*types.Bot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Bot, 0)
	for _, b := range s.bots {
		if b.AccountID == accountID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateBot(b *types.Bot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bots[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	s.bots[b.ID] = &cp
	return nil
}

func (s *MemoryStore) CreatePlan(p *types.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.plans[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetPlan(id string) (*types.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) ListBotPlans(botID string) ([]*types.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Plan, 0)
	for _, p := range s.plans {
		if p.BotID == botID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateSale(sale *types.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if sale.Status == "" {
		sale.Status = types.SalePending
	}
	now := time.Now().UTC()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

func (s *MemoryStore) GetSale(id string) (*types.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sale
	return &cp, nil
}

func (s *MemoryStore) GetSaleByPaymentID(paymentID string) (*types.Sale, error) {
	if paymentID == "" {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sale := range s.sales {
		if sale.PaymentID == paymentID {
			cp := *sale
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListBotSales(botID string) ([]*types.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Sale, 0)
	for _, sale := range s.sales {
		if sale.BotID == botID {
			cp := *sale
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateSale(sale *types.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[sale.ID]; !ok {
		return ErrNotFound
	}
	sale.UpdatedAt = time.Now().UTC()
	cp := *sale
	s.sales[sale.ID] = &cp
	return nil
}

func (s *MemoryStore) ListExpiredSales(now time.Time) ([]*types.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Sale, 0)
	for _, sale := range s.sales {
		if sale.Status == types.SalePaid && sale.AccessExpiresAt != nil && sale.AccessExpiresAt.Before(now) {
			cp := *sale
			out = append(out, &cp)
		}
	}
	return out, nil
}
