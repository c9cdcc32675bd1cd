package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"svw.info/propagenda/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidObject wraps every field-level rejection of a board object.
var ErrInvalidObject = errors.New("invalid board object")

// BoardValidator checks the placement invariants the engine relies on.
type BoardValidator struct{}

func New() *BoardValidator { return &BoardValidator{} }

// Validate rejects malformed objects with an error and reports cells holding
// more than one object as conflicts.
func (v *BoardValidator) Validate(ctx context.Context, objects []domain.BoardObject) (bool, []domain.CellCoord, error) {
	ids := make(map[string]struct{}, len(objects))
	for i, o := range objects {
		if err := validate.StructCtx(ctx, o); err != nil {
			return false, nil, fmt.Errorf("%w %d: %w", ErrInvalidObject, i, err)
		}
		if !domain.ValidName(o.Type, o.Name) {
			return false, nil, fmt.Errorf("%w %d: %q is not a valid %s", ErrInvalidObject, i, o.Name, o.Type)
		}
		if _, dup := ids[o.ID]; dup {
			return false, nil, fmt.Errorf("%w %d: duplicate id %q", ErrInvalidObject, i, o.ID)
		}
		ids[o.ID] = struct{}{}
	}

	conf := make([]domain.CellCoord, 0, 2)
	var occupied [domain.GridSize][domain.GridSize]bool
	for _, o := range objects {
		if occupied[o.Row][o.Col] {
			conf = append(conf, o.Cell())
			continue
		}
		occupied[o.Row][o.Col] = true
	}
	return len(conf) == 0, conf, nil
}

// Agendas keeps the metadata entries that pass validation and returns the
// rejection reason for each one dropped.
func Agendas(meta []domain.Agenda) ([]domain.Agenda, []error) {
	kept := make([]domain.Agenda, 0, len(meta))
	var skipped []error
	for i, a := range meta {
		if err := validate.Struct(a); err != nil {
			skipped = append(skipped, fmt.Errorf("agenda %d (%q): %w", i, a.ID, err))
			continue
		}
		kept = append(kept, a)
	}
	return kept, skipped
}
