package ports

import (
	"context"

	"svw.info/propagenda/internal/domain"
)

// Selector picks the next agenda given the completion history.
type Selector interface {
	Next(agendas []domain.Agenda, completed []string) (domain.Agenda, bool)
}

// Validator checks board snapshots before they reach the engine.
type Validator interface {
	Validate(ctx context.Context, objects []domain.BoardObject) (ok bool, conflicts []domain.CellCoord, err error)
}

// MetadataSource loads the agenda metadata resource.
type MetadataSource interface {
	Load(ctx context.Context) ([]domain.Agenda, error)
}
