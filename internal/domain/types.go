package domain

// BoardObject is one item placed on the grid.
type BoardObject struct {
	ID    string     `json:"id" validate:"required"`
	Type  ObjectType `json:"type" validate:"required,oneof=shape animal food"`
	Name  string     `json:"name" validate:"required"`
	Size  Size       `json:"size" validate:"required,oneof=S M L"`
	Color Color      `json:"color" validate:"required,oneof=red orange yellow green blue purple"`
	Row   int        `json:"row" validate:"gte=0,lte=4"`
	Col   int        `json:"col" validate:"gte=0,lte=4"`
}

// CellCoord identifies a cell on the board.
type CellCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell returns the object's position.
func (o BoardObject) Cell() CellCoord { return CellCoord{Row: o.Row, Col: o.Col} }

// Verdict is the result of evaluating one agenda against one board snapshot.
type Verdict struct {
	Satisfied bool     `json:"satisfied"`
	Hints     []string `json:"hints"`
}

// Agenda is the static metadata of a rule, as published in agendas.json.
type Agenda struct {
	ID          string  `json:"id" validate:"required"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Difficulty  float64 `json:"difficulty" validate:"gte=0,lte=10"`
}

// GameProgress records completed agenda ids in completion order.
type GameProgress struct {
	Completed []string `json:"completed"`
}

// Has reports whether id was already completed.
func (p *GameProgress) Has(id string) bool {
	for _, c := range p.Completed {
		if c == id {
			return true
		}
	}
	return false
}

// Complete appends id unless it is already recorded.
func (p *GameProgress) Complete(id string) bool {
	if id == "" || p.Has(id) {
		return false
	}
	p.Completed = append(p.Completed, id)
	return true
}

// Reset clears the history for a new game.
func (p *GameProgress) Reset() { p.Completed = nil }

// GameStats summarises a finished game for the victory screen.
type GameStats struct {
	// TotalMoves counts accepted board submissions.
	TotalMoves int `json:"totalMoves"`
	// ObjectsPlaced counts distinct object ids seen on the board during the game.
	ObjectsPlaced int `json:"objectsPlaced"`
	// TimeTakenMs is the time since the game started or was restarted.
	TimeTakenMs int64 `json:"timeTakenMs"`
	// TimeTaken is TimeTakenMs formatted as m:ss.
	TimeTaken string `json:"timeTaken"`
}
