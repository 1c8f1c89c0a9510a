package transfers

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Clock returns the current time. Overridable in tests.
type Clock func() time.Time

// EngineConfig wires one league's engine.
type EngineConfig struct {
	League   string
	Rules    Rules
	Schedule Schedule
	Catalog  Catalog
	Clock    Clock
	Logger   *zerolog.Logger
}

// Engine applies the transfer-window state machine to a single league's
// State. It holds no mutable window state itself: everything lives in the
// State passed through each call, so concurrent requests are serialized by
// the persistence layer, not by the engine.
type Engine struct {
	league   string
	rules    Rules
	schedule Schedule
	catalog  Catalog
	now      Clock
	logger   zerolog.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		league:   cfg.League,
		rules:    cfg.Rules,
		schedule: cfg.Schedule,
		catalog:  cfg.Catalog,
		now:      cfg.Clock,
	}
	if e.rules.MaxGW <= 0 {
		e.rules.MaxGW = DefaultRules().MaxGW
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger != nil {
		e.logger = *cfg.Logger
	} else {
		e.logger = log.With().Str("league", cfg.League).Logger()
	}
	return e
}

// League returns the league tag this engine operates on.
func (e *Engine) League() string {
	return e.league
}

// Rules returns the league rules the engine enforces.
func (e *Engine) Rules() Rules {
	return e.rules
}
