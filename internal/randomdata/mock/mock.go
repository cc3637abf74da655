package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jon4hz/bankdesk/internal/engine"
)

// MockSource is a mock implementation of engine.Source for testing.
// It hands out users u1, u2, ... and banks b1, b2, ... in order.
type MockSource struct {
	mu sync.Mutex

	nextUser int
	nextBank int

	userCalls []int
	bankCalls []int

	// Error simulation
	RandomUsersError error
	RandomBanksError error

	// Hooks run before a fetch returns, e.g. to hold a request open.
	BeforeUsers func(n int)
	BeforeBanks func(n int)
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Reset clears all counters, hooks and errors from the mock.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUser = 0
	m.nextBank = 0
	m.userCalls = nil
	m.bankCalls = nil
	m.RandomUsersError = nil
	m.RandomBanksError = nil
	m.BeforeUsers = nil
	m.BeforeBanks = nil
}

// RandomUsers is a mock implementation.
func (m *MockSource) RandomUsers(ctx context.Context, n int) ([]engine.User, error) {
	m.mu.Lock()
	m.userCalls = append(m.userCalls, n)
	hook, err := m.BeforeUsers, m.RandomUsersError
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]engine.User, 0, n)
	for range n {
		m.nextUser++
		users = append(users, engine.User{
			ID:        engine.ID(fmt.Sprintf("u%d", m.nextUser)),
			FirstName: fmt.Sprintf("First%d", m.nextUser),
			LastName:  fmt.Sprintf("Last%d", m.nextUser),
			Username:  fmt.Sprintf("user%d", m.nextUser),
			Email:     fmt.Sprintf("user%d@example.com", m.nextUser),
		})
	}
	return users, nil
}

// RandomBanks is a mock implementation.
func (m *MockSource) RandomBanks(ctx context.Context, n int) ([]engine.Bank, error) {
	m.mu.Lock()
	m.bankCalls = append(m.bankCalls, n)
	hook, err := m.BeforeBanks, m.RandomBanksError
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	banks := make([]engine.Bank, 0, n)
	for range n {
		m.nextBank++
		banks = append(banks, engine.Bank{
			ID:            engine.ID(fmt.Sprintf("b%d", m.nextBank)),
			BankName:      fmt.Sprintf("Bank %d", m.nextBank),
			RoutingNumber: fmt.Sprintf("%09d", m.nextBank),
			SwiftBIC:      fmt.Sprintf("BANK%04d", m.nextBank),
		})
	}
	return banks, nil
}

// UserCalls returns the requested sizes of all RandomUsers calls.
func (m *MockSource) UserCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int{}, m.userCalls...)
}

// BankCalls returns the requested sizes of all RandomBanks calls.
func (m *MockSource) BankCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int{}, m.bankCalls...)
}
