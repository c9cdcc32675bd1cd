package agenda

import (
	"fmt"

	"svw.info/propagenda/internal/domain"
)

// Check evaluates one agenda against a board snapshot. Checks never mutate objects.
type Check func(objects []domain.BoardObject) domain.Verdict

// Agenda ids with a built-in check.
const (
	OneSmall           = "one-small"
	SecondColumnOrange = "second-column-orange"
	TwoInFourth        = "two-in-fourth"
	AllDifferent       = "all-different"
	OnePerRow          = "one-per-row"
	SnailsPurple       = "snails-purple"
	SquaresSameColumn  = "squares-same-column"
	Mysterious         = "mysterious"
)

const minAllDifferent = 3

// checks is built once and never written to afterwards.
var checks = map[string]Check{
	OneSmall:           checkOneSmall,
	SecondColumnOrange: checkSecondColumnOrange,
	TwoInFourth:        checkTwoInFourth,
	AllDifferent:       checkAllDifferent,
	OnePerRow:          checkOnePerRow,
	SnailsPurple:       checkSnailsPurple,
	SquaresSameColumn:  checkSquaresSameColumn,
	Mysterious:         checkMysterious,
}

func verdict(ok bool, hints []string) domain.Verdict {
	if hints == nil {
		hints = []string{}
	}
	return domain.Verdict{Satisfied: ok, Hints: hints}
}

func filter(objects []domain.BoardObject, keep func(domain.BoardObject) bool) []domain.BoardObject {
	var out []domain.BoardObject
	for _, o := range objects {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func isA(t domain.ObjectType, name string) func(domain.BoardObject) bool {
	return func(o domain.BoardObject) bool { return o.Type == t && o.Name == name }
}

func checkOneSmall(objects []domain.BoardObject) domain.Verdict {
	small := filter(objects, func(o domain.BoardObject) bool { return o.Size == domain.Small })
	if len(small) == 0 {
		return verdict(false, []string{"No small items found on the board."})
	}
	return verdict(true, nil)
}

func checkSecondColumnOrange(objects []domain.BoardObject) domain.Verdict {
	var hints []string
	for _, o := range objects {
		if o.Col == 1 && o.Color != domain.Orange {
			hints = append(hints, fmt.Sprintf("Item at (%d,2) is %s, not orange.", o.Row+1, o.Color))
		}
	}
	return verdict(len(hints) == 0, hints)
}

func checkTwoInFourth(objects []domain.BoardObject) domain.Verdict {
	inFourth := filter(objects, func(o domain.BoardObject) bool { return o.Col == 3 })
	total := len(objects)
	var hints []string
	if total != 2 {
		hints = append(hints, fmt.Sprintf("Board has %d items, needs exactly 2.", total))
	}
	if len(inFourth) < 2 {
		hints = append(hints, fmt.Sprintf("Only %d items in fourth column, need 2.", len(inFourth)))
	}
	if total > len(inFourth) {
		hints = append(hints, "Found items outside fourth column.")
	}
	return verdict(total == 2 && len(inFourth) == 2, hints)
}

// checkAllDifferent reports only the first colliding pair, scanning unordered
// pairs in board order; later collisions are left for the next evaluation.
func checkAllDifferent(objects []domain.BoardObject) domain.Verdict {
	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			if hints := pairCollision(objects[i], objects[j]); len(hints) > 0 {
				return verdict(false, hints)
			}
		}
	}
	if len(objects) < minAllDifferent {
		return verdict(false, []string{
			fmt.Sprintf("Need at least %d items (currently have %d).", minAllDifferent, len(objects)),
		})
	}
	return verdict(true, nil)
}

func pairCollision(a, b domain.BoardObject) []string {
	var hints []string
	where := fmt.Sprintf("Items at (%d,%d) and (%d,%d)", a.Row+1, a.Col+1, b.Row+1, b.Col+1)
	if a.Type == b.Type && a.Name == b.Name {
		hints = append(hints, fmt.Sprintf("%s are both %ss.", where, a.Name))
	}
	if a.Size == b.Size {
		hints = append(hints, fmt.Sprintf("%s are both size %s.", where, a.Size))
	}
	return hints
}

func checkOnePerRow(objects []domain.BoardObject) domain.Verdict {
	var filled [domain.GridSize]bool
	for _, o := range objects {
		if o.Row >= 0 && o.Row < domain.GridSize {
			filled[o.Row] = true
		}
	}
	var hints []string
	for r, has := range filled {
		if !has {
			hints = append(hints, fmt.Sprintf("Row %d is empty.", r+1))
		}
	}
	return verdict(len(hints) == 0, hints)
}

func checkSnailsPurple(objects []domain.BoardObject) domain.Verdict {
	var hints []string
	for _, s := range filter(objects, isA(domain.Animal, "snail")) {
		if s.Color != domain.Purple {
			hints = append(hints, fmt.Sprintf("Snail at (%d,%d) is %s, not purple.", s.Row+1, s.Col+1, s.Color))
		}
	}
	return verdict(len(hints) == 0, hints)
}

func checkSquaresSameColumn(objects []domain.BoardObject) domain.Verdict {
	squares := filter(objects, isA(domain.Shape, "square"))
	if len(squares) < 2 {
		return verdict(true, nil)
	}
	col := squares[0].Col
	for _, s := range squares[1:] {
		if s.Col != col {
			return verdict(false, []string{fmt.Sprintf("Put all squares in column %d", col+1)})
		}
	}
	return verdict(true, nil)
}

// checkMysterious keeps its food requirement hidden until some food is on the board.
func checkMysterious(objects []domain.BoardObject) domain.Verdict {
	foods := filter(objects, func(o domain.BoardObject) bool { return o.Type == domain.Food })
	dinos := filter(objects, isA(domain.Animal, "dinosaur"))
	ok := true
	var hints []string
	if len(foods) < 3 {
		ok = false
		if len(foods) > 0 {
			hints = append(hints, "There should be more food on the board…")
		}
	}
	if len(dinos) > 0 {
		ok = false
		hints = append(hints, "Something about dinosaurs seems… unwanted.")
	}
	return verdict(ok, hints)
}
