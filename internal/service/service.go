// internal/service/service.go
// Package service ties the per-league engines to the state store. Every
// mutating call is one Store.Update pass: load, apply, persist, all inside
// a single transaction, so concurrent requests against a league serialize
// at the database.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valdraft/transferdesk/internal/catalog"
	"github.com/valdraft/transferdesk/internal/config"
	"github.com/valdraft/transferdesk/internal/metrics"
	"github.com/valdraft/transferdesk/internal/standings"
	"github.com/valdraft/transferdesk/internal/state"
	"github.com/valdraft/transferdesk/internal/transfers"
)

// ErrUnknownLeague is returned for a league tag with no configured engine.
var ErrUnknownLeague = errors.New("unknown league")

// ErrWindowNotOpened is returned when OpenWindow's preconditions fail: a
// window already active, no rounds scheduled for the gameweek, or an empty
// manager order.
var ErrWindowNotOpened = errors.New("window not opened")

type Service struct {
	store   *state.Store
	engines map[string]*transfers.Engine
	ranker  standings.Ranker
	leagues map[string]config.LeagueConfig
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Options carries the optional collaborators.
type Options struct {
	Ranker  standings.Ranker
	Metrics *metrics.Metrics
}

func New(store *state.Store, engines map[string]*transfers.Engine, leagues map[string]config.LeagueConfig, opts Options) *Service {
	return &Service{
		store:   store,
		engines: engines,
		ranker:  opts.Ranker,
		leagues: leagues,
		metrics: opts.Metrics,
		logger:  log.With().Str("component", "service").Logger(),
	}
}

// EnginesFromConfig builds one engine per configured league: built-in
// schedule for the tag, overridden by any configured windows, catalog
// loaded when a file is set.
func EnginesFromConfig(cfg *config.Config, clock transfers.Clock) (map[string]*transfers.Engine, error) {
	defaults := transfers.DefaultSchedules()
	engines := make(map[string]*transfers.Engine, len(cfg.Leagues))

	for tag, league := range cfg.Leagues {
		sched := transfers.Schedule{}
		for gw, rounds := range defaults[tag] {
			sched[gw] = rounds
		}
		for gw, rounds := range league.Windows {
			sched[gw] = rounds
		}

		var cat transfers.Catalog
		if league.CatalogFile != "" {
			loaded, err := catalog.LoadFile(league.CatalogFile)
			if err != nil {
				return nil, fmt.Errorf("league %s: %w", tag, err)
			}
			cat = loaded
		}

		engines[tag] = transfers.NewEngine(transfers.EngineConfig{
			League: tag,
			Rules: transfers.Rules{
				MaxGW:            league.MaxGW,
				AllowUndrafted:   league.AllowUndrafted,
				EnforcePositions: league.EnforcePositions,
			},
			Schedule: sched,
			Catalog:  cat,
			Clock:    clock,
		})
	}
	return engines, nil
}

func (svc *Service) engine(league string) (*transfers.Engine, error) {
	e, ok := svc.engines[league]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLeague, league)
	}
	return e, nil
}

// Leagues returns the configured league tags.
func (svc *Service) Leagues() []string {
	tags := make([]string, 0, len(svc.engines))
	for tag := range svc.engines {
		tags = append(tags, tag)
	}
	return tags
}

// OpenWindow opens a window at gw. The manager order is the current
// standings worst first; with no standings data the configured participant
// list is used as is.
func (svc *Service) OpenWindow(ctx context.Context, league string, gw int) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}

	var rows []standings.Row
	if svc.ranker != nil {
		if rows, err = svc.ranker.Standings(league); err != nil {
			svc.logger.Error().Err(err).Str("league", league).Msg("Failed to fetch standings, falling back to configured order")
			rows = nil
		}
	}
	order := standings.Order(rows, svc.leagues[league].Participants)

	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		if !e.OpenWindow(s, gw, order) {
			return fmt.Errorf("%w: league %s gameweek %d", ErrWindowNotOpened, league, gw)
		}
		return nil
	})
	if err == nil {
		svc.metrics.WindowEvent(league, "opened")
	}
	return err
}

// CloseWindow force-closes the league's window. Closing an already closed
// window is a no-op.
func (svc *Service) CloseWindow(ctx context.Context, league string) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	closed := false
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		closed = e.IsActive(s)
		e.CloseWindow(s)
		return nil
	})
	if err == nil && closed {
		svc.metrics.WindowEvent(league, "closed")
	}
	return err
}

// AdvanceTurn skips the current phase without a transfer. Administrative:
// used when a manager passes or is unreachable.
func (svc *Service) AdvanceTurn(ctx context.Context, league string) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		if !e.Advance(s) {
			return &transfers.ValidationError{Reason: transfers.ReasonWindowInactive, Detail: "no transfer window is active"}
		}
		if !e.IsActive(s) {
			svc.metrics.WindowEvent(league, "closed")
		}
		return nil
	})
	svc.observe(league, "advance", err)
	return err
}

// TransferOut releases a player for the manager on the clock.
func (svc *Service) TransferOut(ctx context.Context, league, manager string, playerID, gw int) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		if !onRoster(s, manager, playerID) {
			// The engine will synthesize a placeholder.
			svc.metrics.Placeholder(league)
		}
		if err := e.TransferOut(s, manager, playerID, gw); err != nil {
			return err
		}
		if !e.IsActive(s) {
			svc.metrics.WindowEvent(league, "closed")
		}
		return nil
	})
	svc.observe(league, string(transfers.ActionTransferOut), err)
	return err
}

// TransferIn claims a replacement for the manager on the clock.
func (svc *Service) TransferIn(ctx context.Context, league, manager string, playerID, gw int) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		if err := e.TransferIn(s, manager, playerID, gw); err != nil {
			return err
		}
		if !e.IsActive(s) {
			svc.metrics.WindowEvent(league, "closed")
		}
		return nil
	})
	svc.observe(league, string(transfers.ActionTransferIn), err)
	return err
}

// PickTransferPlayer assigns a pool player to a manager outside the turn
// flow.
func (svc *Service) PickTransferPlayer(ctx context.Context, league, manager string, playerID, gw int) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		return e.PickTransferPlayer(s, manager, playerID, gw)
	})
	svc.observe(league, string(transfers.ActionPickTransfer), err)
	return err
}

// RevertLastTransferOut undoes the current manager's unmatched release.
func (svc *Service) RevertLastTransferOut(ctx context.Context, league string) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		return e.RevertLastTransferOut(s)
	})
	if err == nil {
		svc.metrics.Revert(league)
	}
	return err
}

// NormalizeAll backfills transfer bookkeeping on every roster entry.
func (svc *Service) NormalizeAll(ctx context.Context, league string, currentGW int) error {
	e, err := svc.engine(league)
	if err != nil {
		return err
	}
	_, err = svc.store.Update(ctx, league, func(s *transfers.State) error {
		e.NormalizeAll(s, currentGW)
		return nil
	})
	return err
}

// WindowStatus is a read-only snapshot of the turn state.
type WindowStatus struct {
	Active      bool            `json:"active"`
	GW          int             `json:"gw,omitempty"`
	Round       int             `json:"round,omitempty"`
	TotalRounds int             `json:"total_rounds,omitempty"`
	Manager     string          `json:"manager,omitempty"`
	Phase       transfers.Phase `json:"phase,omitempty"`
	Order       []string        `json:"order,omitempty"`
}

// Status reports the league's current window.
func (svc *Service) Status(ctx context.Context, league string) (WindowStatus, error) {
	e, err := svc.engine(league)
	if err != nil {
		return WindowStatus{}, err
	}
	s, err := svc.store.Load(ctx, league)
	if err != nil {
		return WindowStatus{}, err
	}
	if !e.IsActive(s) {
		return WindowStatus{}, nil
	}
	w := s.Transfers.ActiveWindow
	manager, _ := e.CurrentManager(s)
	phase, _ := e.CurrentPhase(s)
	return WindowStatus{
		Active:      true,
		GW:          w.TriggerGW,
		Round:       w.CurrentRound,
		TotalRounds: w.TotalRounds,
		Manager:     manager,
		Phase:       phase,
		Order:       w.ManagersOrder,
	}, nil
}

// History returns the audit log, optionally filtered to one manager and,
// when todayOnly is set, to entries from the current UTC day.
func (svc *Service) History(ctx context.Context, league, manager string, todayOnly bool) ([]transfers.HistoryEntry, error) {
	e, err := svc.engine(league)
	if err != nil {
		return nil, err
	}
	s, err := svc.store.Load(ctx, league)
	if err != nil {
		return nil, err
	}
	if todayOnly {
		entries := e.HistoryOn(s, time.Now().UTC())
		if manager == "" {
			return entries, nil
		}
		var out []transfers.HistoryEntry
		for _, entry := range entries {
			if entry.Manager == manager {
				out = append(out, entry)
			}
		}
		return out, nil
	}
	return e.History(s, manager), nil
}

// AvailablePlayers returns the released pool.
func (svc *Service) AvailablePlayers(ctx context.Context, league string) ([]transfers.Player, error) {
	e, err := svc.engine(league)
	if err != nil {
		return nil, err
	}
	s, err := svc.store.Load(ctx, league)
	if err != nil {
		return nil, err
	}
	return e.AvailablePlayers(s), nil
}

// ClaimablePlayers returns the full claimable set, pool plus undrafted for
// leagues that allow it.
func (svc *Service) ClaimablePlayers(ctx context.Context, league string) ([]transfers.Player, error) {
	e, err := svc.engine(league)
	if err != nil {
		return nil, err
	}
	s, err := svc.store.Load(ctx, league)
	if err != nil {
		return nil, err
	}
	return e.ClaimablePlayers(s), nil
}

// Rosters returns a copy of every roster in the league.
func (svc *Service) Rosters(ctx context.Context, league string) (map[string][]transfers.Player, error) {
	if _, err := svc.engine(league); err != nil {
		return nil, err
	}
	s, err := svc.store.Load(ctx, league)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]transfers.Player, len(s.Rosters))
	for manager, roster := range s.Rosters {
		copied := make([]transfers.Player, len(roster))
		copy(copied, roster)
		out[manager] = copied
	}
	return out, nil
}

// SetRoster replaces one manager's roster. Used by draft import tooling.
func (svc *Service) SetRoster(ctx context.Context, league, manager string, roster []transfers.Player) error {
	if _, err := svc.engine(league); err != nil {
		return err
	}
	_, err := svc.store.Update(ctx, league, func(s *transfers.State) error {
		s.Rosters[manager] = roster
		return nil
	})
	return err
}

func (svc *Service) observe(league, action string, err error) {
	if err == nil {
		svc.metrics.Transfer(league, action)
		return
	}
	var ve *transfers.ValidationError
	if errors.As(err, &ve) {
		svc.metrics.Rejection(league, string(ve.Reason))
	}
}

func onRoster(s *transfers.State, manager string, playerID int) bool {
	for _, p := range s.Rosters[manager] {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
