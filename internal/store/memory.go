package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finance-tracker-backend/internal/model"
)

// Memory keeps everything in process. It backs tests and DATA_BACKEND=memory.
type Memory struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]model.User
	accounts     map[uuid.UUID]model.Account
	categories   map[uuid.UUID]model.Category
	transactions map[uuid.UUID]model.Transaction
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[uuid.UUID]model.User),
		accounts:     make(map[uuid.UUID]model.Account),
		categories:   make(map[uuid.UUID]model.Category),
		transactions: make(map[uuid.UUID]model.Transaction),
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateUser(_ context.Context, u model.User, categories []model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c.Name] {
			return ErrDuplicate
		}
		seen[c.Name] = true
	}

	m.users[u.ID] = u
	for _, c := range categories {
		m.categories[c.ID] = c
	}
	return nil
}

func (m *Memory) UserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) SetResetToken(_ context.Context, userID uuid.UUID, tokenHash string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpires = &expires
	m.users[userID] = u
	return nil
}

func (m *Memory) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash ||
			u.ResetTokenExpires == nil || u.ResetTokenExpires.Before(now) {
			continue
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash = nil
		u.ResetTokenExpires = nil
		m.users[id] = u
		return id, nil
	}
	return uuid.Nil, ErrNotFound
}

func (m *Memory) ListAccounts(_ context.Context, userID uuid.UUID) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]model.Account, 0)
	for _, a := range m.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	slices.SortFunc(accounts, func(a, b model.Account) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return accounts, nil
}

func (m *Memory) GetAccount(_ context.Context, userID, id uuid.UUID) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return model.Account{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) AccountNameTaken(_ context.Context, userID uuid.UUID, name string, except *uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountNameTaken(userID, name, except), nil
}

func (m *Memory) accountNameTaken(userID uuid.UUID, name string, except *uuid.UUID) bool {
	for _, a := range m.accounts {
		if a.UserID != userID || a.Name != name {
			continue
		}
		if except != nil && a.ID == *except {
			continue
		}
		return true
	}
	return false
}

func (m *Memory) CreateAccount(_ context.Context, a model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accountNameTaken(a.UserID, a.Name, nil) {
		return ErrDuplicate
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *Memory) UpdateAccount(_ context.Context, a model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.accounts[a.ID]
	if !ok || existing.UserID != a.UserID {
		return ErrNotFound
	}
	if m.accountNameTaken(a.UserID, a.Name, &a.ID) {
		return ErrDuplicate
	}
	a.CreatedAt = existing.CreatedAt
	m.accounts[a.ID] = a
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	for _, t := range m.transactions {
		if t.AccountID != nil && *t.AccountID == id {
			return ErrInUse
		}
	}
	delete(m.accounts, id)
	return nil
}

func (m *Memory) ListCategories(_ context.Context, userID uuid.UUID, typ model.EntryType) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	categories := make([]model.Category, 0)
	for _, c := range m.categories {
		if c.UserID == userID && (typ == "" || c.Type == typ) {
			categories = append(categories, c)
		}
	}
	slices.SortFunc(categories, func(a, b model.Category) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return categories, nil
}

func (m *Memory) GetCategory(_ context.Context, userID, id uuid.UUID) (model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return model.Category{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) CategoryNameTaken(_ context.Context, userID uuid.UUID, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.categoryNameTaken(userID, name), nil
}

func (m *Memory) categoryNameTaken(userID uuid.UUID, name string) bool {
	for _, c := range m.categories {
		if c.UserID == userID && c.Name == name {
			return true
		}
	}
	return false
}

func (m *Memory) CreateCategory(_ context.Context, c model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.categoryNameTaken(c.UserID, c.Name) {
		return ErrDuplicate
	}
	m.categories[c.ID] = c
	return nil
}

func (m *Memory) withCategory(t model.Transaction) model.Transaction {
	if c, ok := m.categories[t.CategoryID]; ok {
		t.Category = &c
	}
	return t
}

func matchesFilter(t model.Transaction, f model.TransactionFilter) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Search)) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != nil && t.CategoryID != *f.CategoryID {
		return false
	}
	if f.AccountID != nil && (t.AccountID == nil || *t.AccountID != *f.AccountID) {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	return true
}

func compareBy(field model.SortField) func(a, b model.Transaction) int {
	var primary func(a, b model.Transaction) int
	switch field {
	case model.SortAmount:
		primary = func(a, b model.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case model.SortDescription:
		primary = func(a, b model.Transaction) int { return strings.Compare(a.Description, b.Description) }
	case model.SortType:
		primary = func(a, b model.Transaction) int { return strings.Compare(string(a.Type), string(b.Type)) }
	case model.SortCreatedAt:
		primary = func(a, b model.Transaction) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		primary = func(a, b model.Transaction) int { return a.Date.Compare(b.Date) }
	}
	return func(a, b model.Transaction) int {
		return cmp.Or(primary(a, b), strings.Compare(a.ID.String(), b.ID.String()))
	}
}

func (m *Memory) ListTransactions(_ context.Context, userID uuid.UUID, q model.TransactionQuery) ([]model.Transaction, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]model.Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID == userID && matchesFilter(t, q.Filter) {
			matched = append(matched, t)
		}
	}

	compare := compareBy(q.SortBy)
	slices.SortFunc(matched, func(a, b model.Transaction) int {
		if q.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})

	total := len(matched)
	start := max(0, min(q.Offset(), total))
	end := min(start+q.PageSize, total)

	page := make([]model.Transaction, 0, end-start)
	for _, t := range matched[start:end] {
		page = append(page, m.withCategory(t))
	}
	return page, total, nil
}

func (m *Memory) GetTransaction(_ context.Context, userID, id uuid.UUID) (model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return model.Transaction{}, ErrNotFound
	}
	return m.withCategory(t), nil
}

func (m *Memory) CreateTransaction(_ context.Context, t model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Category = nil
	m.transactions[t.ID] = t
	return nil
}

func (m *Memory) UpdateTransaction(_ context.Context, t model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return ErrNotFound
	}
	t.Category = nil
	t.CreatedAt = existing.CreatedAt
	m.transactions[t.ID] = t
	return nil
}

func (m *Memory) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func matchesEntry(t model.Transaction, f model.EntryFilter) bool {
	return matchesFilter(t, model.TransactionFilter{Type: f.Type, AccountID: f.AccountID, From: f.From, To: f.To})
}

func (m *Memory) CountTransactions(_ context.Context, userID uuid.UUID, f model.EntryFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.transactions {
		if t.UserID == userID && matchesEntry(t, f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Entries(_ context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]model.Transaction, 0)
	for _, t := range m.transactions {
		if t.UserID == userID && matchesEntry(t, f) {
			matched = append(matched, t)
		}
	}
	slices.SortFunc(matched, compareBy(model.SortDate))

	entries := make([]model.Entry, 0, len(matched))
	for _, t := range matched {
		c := m.categories[t.CategoryID]
		entries = append(entries, model.Entry{
			ID:            t.ID,
			AccountID:     t.AccountID,
			CategoryID:    t.CategoryID,
			CategoryName:  c.Name,
			CategoryColor: c.Color,
			Amount:        t.Amount,
			Type:          t.Type,
			Date:          t.Date,
		})
	}
	return entries, nil
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)
