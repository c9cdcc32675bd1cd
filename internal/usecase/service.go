package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"svw.info/propagenda/internal/agenda"
	"svw.info/propagenda/internal/domain"
	"svw.info/propagenda/internal/metrics"
	"svw.info/propagenda/internal/ports"
	"svw.info/propagenda/internal/progression"
	"svw.info/propagenda/internal/validator"
)

// LoadTimeout bounds the startup metadata load.
const LoadTimeout = 15 * time.Second

var (
	errNotConfigured = errors.New("usecase dependency not configured")

	// ErrCellConflict is returned when a board holds two objects in one cell.
	ErrCellConflict = errors.New("more than one object in a cell")
)

type Service struct {
	Source    ports.MetadataSource
	Selector  ports.Selector
	Validator ports.Validator
	Logger    *slog.Logger

	catalog atomic.Pointer[agenda.Catalog]
}

func NewService(src ports.MetadataSource, sel ports.Selector, v ports.Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	u := &Service{Source: src, Selector: sel, Validator: v, Logger: logger}
	u.catalog.Store(agenda.Empty())
	return u
}

// LoadCatalog reads the metadata once and installs the resulting catalog.
// Any failure leaves an empty catalog: the game then has zero rounds.
func (u *Service) LoadCatalog(ctx context.Context) *agenda.Catalog {
	c, err := u.load(ctx)
	if err != nil {
		u.Logger.Error("loading agendas", "err", err)
		c = agenda.Empty()
	}
	metrics.MetadataLoad(err, c.Len())
	u.catalog.Store(c)
	return c
}

// Reload re-reads the metadata, keeping the current catalog if that fails.
func (u *Service) Reload(ctx context.Context) {
	c, err := u.load(ctx)
	if err != nil {
		metrics.MetadataLoad(err, u.Catalog().Len())
		u.Logger.Warn("reloading agendas, keeping previous catalog", "err", err)
		return
	}
	u.catalog.Store(c)
	metrics.MetadataLoad(nil, c.Len())
	u.Logger.Info("agendas reloaded", "agendas", c.Len())
}

func (u *Service) load(ctx context.Context) (*agenda.Catalog, error) {
	if u.Source == nil {
		return nil, errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()
	meta, err := u.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	kept, skipped := validator.Agendas(meta)
	for _, e := range skipped {
		u.Logger.Warn("skipping agenda metadata", "err", e)
	}
	c := agenda.New(kept)
	for _, a := range c.Agendas() {
		if !agenda.Known(a.ID) {
			u.Logger.Warn("agenda has no check and can never be satisfied", "agenda", a.ID)
		}
	}
	u.Logger.Debug("agendas loaded", "agendas", c.Len(), "skipped", len(skipped))
	return c, nil
}

// Catalog returns the currently installed catalog.
func (u *Service) Catalog() *agenda.Catalog { return u.catalog.Load() }

// Agendas lists the loaded agenda metadata.
func (u *Service) Agendas() []domain.Agenda { return u.Catalog().Agendas() }

// Rounds is how many agendas one game lasts.
func (u *Service) Rounds() int { return progression.MaxRounds(u.Catalog().Len()) }

// Evaluate validates the board when a validator is configured, then runs the agenda's check.
func (u *Service) Evaluate(ctx context.Context, agendaID string, objects []domain.BoardObject) (domain.Verdict, []domain.CellCoord, error) {
	if u.Validator != nil {
		ok, conflicts, err := u.Validator.Validate(ctx, objects)
		if err != nil {
			return domain.Verdict{}, nil, err
		}
		if !ok {
			return domain.Verdict{}, conflicts, fmt.Errorf("%w: %d conflicting cell(s)", ErrCellConflict, len(conflicts))
		}
	}
	c := u.Catalog()
	v := c.Evaluate(agendaID, objects)
	label := agendaID
	if _, ok := c.Rule(agendaID); !ok {
		label = metrics.UnknownAgenda
	}
	metrics.Evaluation(label, v.Satisfied)
	return v, nil, nil
}

// Progress keeps the completed ids that are in the catalog, once each, in order.
func (u *Service) Progress(completed []string) domain.GameProgress {
	c := u.Catalog()
	var p domain.GameProgress
	for _, id := range completed {
		if _, ok := c.Rule(id); ok {
			p.Complete(id)
		}
	}
	return p
}

// Next picks the next agenda, or reports that the game is over.
func (u *Service) Next(completed []string) (domain.Agenda, bool, error) {
	if u.Selector == nil {
		return domain.Agenda{}, false, errNotConfigured
	}
	a, ok := u.Selector.Next(u.Agendas(), completed)
	metrics.Selection(a.ID, ok)
	return a, ok, nil
}
