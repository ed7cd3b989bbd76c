package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/leaderboard-go/internal/dependencies/mocks"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	idCfg := identity.DefaultConfig()
	idCfg.BcryptCost = bcrypt.MinCost

	policy := call.DefaultPolicy()
	policy.InitialInterval = time.Millisecond

	app := newWithDependencies(store, mockClock, mockRandom, Config{
		IdentityConfig: idCfg,
		CallPolicy:     policy,
	}, nil)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}
