package script

import (
	"errors"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/gofrs/uuid"
)

const (
	// Name is the strategy name
	Name = "script"
	// Extension is the expected file extension of strategy scripts
	Extension = ".tengo"
	// DefaultTimeout is the wall clock budget of a single strategy call
	DefaultTimeout = time.Second
	// DefaultMaxAllocs caps object allocations of a single strategy call
	DefaultMaxAllocs = int64(1 << 22)

	ctxVar    = "ctx"
	stateVar  = "state"
	signalVar = "signal"

	description = `Runs a user supplied tengo script in a sandbox. The script reads the ctx and state globals and assigns its decision to signal`
)

// AllowedStdlibModules are the tengo standard library modules scripts may
// import. Modules with access to the process, filesystem, clock or random
// numbers are excluded
var AllowedStdlibModules = []string{"math", "text", "enum", "json", "base64", "hex"}

var (
	// ErrNoScript is returned when a strategy is created without source code
	ErrNoScript = errors.New("no script source")
	// ErrInvalidState is returned when a script replaces its state with a
	// value that is not a map
	ErrInvalidState = errors.New("script state must remain a map")
)

// Strategy executes a compiled tengo program once per step. Each call runs
// against a fresh clone of the compiled program
type Strategy struct {
	ID      uuid.UUID
	File    string
	Timeout time.Duration

	compiled *tengo.Compiled

	m          sync.Mutex
	run        uintptr
	primary    objectCache
	timeframes map[string]*objectCache
}

// Error is the error type returned by script strategies
type Error struct {
	Action string
	Script string
	Cause  error
}
