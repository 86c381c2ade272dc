// Package state holds the process-wide application context: the bookmark
// routing mode, the signed-in user, the remote config and the block state
// derived from it.
package state

import (
	"sync"

	"github.com/movienight/movienight/auth"
	"github.com/movienight/movienight/store"
)

const DefaultVersion = "1.0.0"

type Mode int

const (
	Guest Mode = iota
	Account
)

func (m Mode) String() string {
	if m == Account {
		return "Account"
	}

	return "Guest"
}

type BlockReason string

const (
	ReasonNone            BlockReason = ""
	ReasonMaintenance     BlockReason = "maintenance"
	ReasonUpdateRequired  BlockReason = "update_required"
	ReasonUpdateAvailable BlockReason = "update_available"
)

type BlockState struct {
	Blocked bool        `json:"isBlocked"`
	Reason  BlockReason `json:"reason,omitempty"`
	Message string      `json:"message,omitempty"`
}

// State is safe for concurrent use. The zero value is not usable, use New.
type State struct {
	mu      sync.RWMutex
	version string
	mode    Mode
	user    *auth.User
	config  *store.AppConfig
	block   BlockState
}

func New(version string) *State {
	if version == "" {
		version = DefaultVersion
	}

	return &State{version: version}
}

// Version is the running application version the block decision is made against.
func (s *State) Version() string {
	return s.version
}

func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mode
}

func (s *State) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
}

func (s *State) User() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user
}

func (s *State) SetUser(user *auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
}

// Config returns the last successfully fetched config, nil before the first fetch.
func (s *State) Config() *store.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.config
}

func (s *State) BlockState() BlockState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.block
}

// Apply replaces the config and its block state in one step.
func (s *State) Apply(cfg *store.AppConfig, block BlockState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = cfg
	s.block = block
}

func (s *State) WebsiteURL() string {
	return s.Config().WebsiteURL()
}

type Snapshot struct {
	Version string           `json:"version"`
	Mode    string           `json:"mode"`
	User    *auth.User       `json:"user,omitempty"`
	Config  *store.AppConfig `json:"config,omitempty"`
	Block   BlockState       `json:"block"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Version: s.version,
		Mode:    s.mode.String(),
		User:    s.user,
		Config:  s.config,
		Block:   s.block,
	}
}
