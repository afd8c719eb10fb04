package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/edgetalker/smart-agents/logging"
)

// ErrChainNotFound is returned when executing an unregistered chain.
var ErrChainNotFound = errors.New("chain not found")

// Info summarises a registered chain.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       int    `json:"steps"`
	StepDetails []Step `json:"step_details"`
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Manager holds named chains bound to one tool registry.
type Manager struct {
	tools  ToolInvoker
	base   logging.Logger
	logger *logging.AgentLogger

	mu     sync.RWMutex
	chains map[string]*Chain
	order  []string
}

// NewManager creates a manager executing chains against tools.
func NewManager(tools ToolInvoker, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Manager{
		tools:  tools,
		base:   opts.Logger,
		logger: logging.NewAgentLogger(opts.Logger).WithComponent("chain_manager"),
		chains: make(map[string]*Chain),
	}
}

// Register adds or replaces a chain. Replacing keeps the original position.
func (m *Manager) Register(c *Chain) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.base != nil {
		c.SetLogger(m.base)
	}

	if _, exists := m.chains[c.Name]; exists {
		m.logger.Warn("chain.register.overwrite", "chain", c.Name)
	} else {
		m.order = append(m.order, c.Name)
	}

	m.chains[c.Name] = c
	m.logger.Info("chain.register", "chain", c.Name, "steps", len(c.Steps))
}

// Get returns the named chain.
func (m *Manager) Get(name string) (*Chain, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chains[name]

	return c, ok
}

// Execute runs the named chain. An unknown name yields ErrChainNotFound.
func (m *Manager) Execute(ctx context.Context, name, input string, vars map[string]string) (string, error) {
	c, ok := m.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrChainNotFound, name)
		m.logger.Warn("chain.execute.not_found", "chain", name)

		return fmt.Sprintf("chain '%s' not found", name), err
	}

	return c.Execute(ctx, m.tools, input, vars)
}

// List returns chain names in registration order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.order))
	copy(out, m.order)

	return out
}

// Info describes the named chain.
func (m *Manager) Info(name string) (Info, bool) {
	c, ok := m.Get(name)
	if !ok {
		return Info{}, false
	}

	details := make([]Step, len(c.Steps))
	copy(details, c.Steps)

	return Info{
		Name:        c.Name,
		Description: c.Description,
		Steps:       len(c.Steps),
		StepDetails: details,
	}, true
}
