package analyzer

// Default card dimensions (spec.md's supplemented board-card feature,
// grounded on board_card.rs's DEFAULT_INPUT_CARD_WIDTH/HEIGHT and
// DEFAULT_VIZ_CARD_WIDTH/HEIGHT constants).
const (
	defaultInputCardWidth  = 3
	defaultInputCardHeight = 1
	defaultVizCardWidth    = 12
	defaultVizCardHeight   = 4

	// boardColumns is the grid width input/viz cards pack into. The
	// original's BoardSpace allocator is not part of this corpus (only
	// board_card.rs's caller-side code was retrieved); this repo grounds
	// the packer itself on the widely used 12-column dashboard-grid
	// convention board_card.rs's DEFAULT_VIZ_CARD_WIDTH already assumes.
	boardColumns = 12
)

// BoardPosition is a card's allocated (or explicitly requested) grid
// rectangle, grounded on board_card.rs's `BoardPosition`.
type BoardPosition struct {
	Row, Column, Width, Height int
}

// Card is a display-layout hint for a Declare or Viz statement (spec.md
// §3.3's card_positions/cards row), grounded on board_card.rs's `Card`.
type Card struct {
	Title    string
	Position BoardPosition
}

// BoardSpace packs requested card rectangles into a fixed-width grid,
// greedily choosing the first row with enough contiguous free columns
// starting from the row's current occupancy frontier. Rows grow
// unboundedly; an explicit row/column request is honored as-is and extends
// the occupancy tracked for that row when it ends past the current frontier.
type BoardSpace struct {
	rowFrontier map[int]int // row -> first unoccupied column
	nextRow     int
}

func newBoardSpace() *BoardSpace {
	return &BoardSpace{rowFrontier: make(map[int]int)}
}

// allocate places a requested rectangle. If explicit is set (the statement
// carried a DSON position object), the requested Row/Column are used
// verbatim and the row frontier is advanced past the rectangle if it ends
// beyond it. Otherwise the space flows cards
// left-to-right into the first row with `Width` contiguous free columns,
// opening a new row when none fits.
func (s *BoardSpace) allocate(requested BoardPosition, explicit bool) BoardPosition {
	if explicit {
		if end := requested.Column + requested.Width; end > s.rowFrontier[requested.Row] {
			s.rowFrontier[requested.Row] = end
		}
		if requested.Row >= s.nextRow {
			s.nextRow = requested.Row + 1
		}
		return requested
	}

	for row := 0; row < s.nextRow; row++ {
		free := boardColumns - s.rowFrontier[row]
		if free >= requested.Width {
			col := s.rowFrontier[row]
			s.rowFrontier[row] = col + requested.Width
			requested.Row = row
			requested.Column = col
			return requested
		}
	}

	row := s.nextRow
	s.nextRow++
	s.rowFrontier[row] = requested.Width
	requested.Row = row
	requested.Column = 0
	return requested
}

// evaluatePositionField evaluates a dson position field to an int,
// recording a NodeError and leaving out unchanged on failure (grounded on
// board_card.rs's `eval` closure).
func evaluatePositionField(inst *ProgramInstance, out *int, pos *DsonObject, attr AttributeKey) {
	value, ok := pos.Get(attr)
	if !ok {
		return
	}
	expr := AsExpression(value)
	scalar, err := Evaluate(expr)
	if err != nil {
		inst.NodeErrors = append(inst.NodeErrors, NodeError{
			ErrorCode:    NodeErrorExpressionEvaluationFailed,
			ErrorMessage: "failed to evaluate position value",
		})
		return
	}
	f, ok := scalar.AsFloat64()
	if !ok {
		inst.NodeErrors = append(inst.NodeErrors, NodeError{
			ErrorCode:    NodeErrorInvalidValueType,
			ErrorMessage: "position value cannot be casted to double",
		})
		return
	}
	*out = int(f)
}

// requestedPosition reads an explicit DSON position object into a
// BoardPosition, reporting whether a position object was present (and
// therefore whether this is an explicit placement request rather than a
// flow-layout one); fields the object leaves out keep the default size or
// zero row/column.
func requestedPosition(inst *ProgramInstance, extra DsonValue, width, height int) (BoardPosition, bool) {
	obj, ok := extra.(*DsonObject)
	if !ok {
		return BoardPosition{Width: width, Height: height}, false
	}
	posValue, ok := obj.Get(AttributeKeyDsonPosition)
	if !ok {
		return BoardPosition{Width: width, Height: height}, false
	}
	pos, ok := posValue.(*DsonObject)
	if !ok {
		return BoardPosition{Width: width, Height: height}, false
	}
	requested := BoardPosition{Width: width, Height: height}
	evaluatePositionField(inst, &requested.Width, pos, AttributeKeyDsonWidth)
	evaluatePositionField(inst, &requested.Height, pos, AttributeKeyDsonHeight)
	evaluatePositionField(inst, &requested.Row, pos, AttributeKeyDsonRow)
	evaluatePositionField(inst, &requested.Column, pos, AttributeKeyDsonColumn)
	return requested, true
}

// AllocateCardPositions runs the board-card layout pass (spec.md's
// supplemented board-card feature, grounded on board_card.rs's
// `allocate_card_positions`): Declare statements pack first at the input
// card's default size, then Viz statements pack at the viz card's default
// size, each honoring an explicit dson position when present.
func AllocateCardPositions(inst *ProgramInstance) error {
	space := newBoardSpace()

	for id, stmt := range inst.Program.Statements {
		decl, ok := stmt.(*DeclareStatement)
		if !ok {
			continue
		}
		requested, explicit := requestedPosition(inst, decl.Extra, defaultInputCardWidth, defaultInputCardHeight)
		inst.CardPositions[id] = space.allocate(requested, explicit)
	}

	for id, stmt := range inst.Program.Statements {
		viz, ok := stmt.(*VizStatement)
		if !ok {
			continue
		}
		requested, explicit := requestedPosition(inst, viz.Extra, defaultVizCardWidth, defaultVizCardHeight)
		inst.CardPositions[id] = space.allocate(requested, explicit)
	}

	return nil
}

// CollectCards builds the title/position card summary for every Declare
// and Viz statement (spec.md's supplemented board-card feature, grounded
// on board_card.rs's `collect_cards`).
func CollectCards(inst *ProgramInstance) {
	for id, stmt := range inst.Program.Statements {
		position := inst.CardPositions[id]
		var card Card
		switch s := stmt.(type) {
		case *DeclareStatement:
			card.Position = position
			if name := inst.StatementNames[id]; name != nil {
				card.Title = name.Key()
			}
		case *VizStatement:
			card.Position = position
			if rel, ok := s.Target.(TableRefRelation); ok {
				card.Title = rel.Name.Key()
			}
		default:
			continue
		}
		inst.Cards[id] = card
	}
}
