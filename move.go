package bestmove

// Move is the rule-validated answer to a best-move request. It is built
// only after the engine's reply has been checked for legality against
// the requested position.
type Move struct {
	// BestMove is the move in UCI notation ("e2e4", "a7a8q").
	BestMove string `json:"best_move"`

	// Score is the engine's evaluation from the side to move's
	// perspective: signed mate distance when a forced mate was found,
	// centipawns otherwise.
	Score int `json:"score"`

	// From and To are the origin and destination squares. For castling
	// they are the king's squares.
	From string `json:"from"`
	To   string `json:"to"`

	// Piece is the moved piece's name ("Pawn", "Knight", ...).
	Piece string `json:"piece"`

	// Captured names the captured piece, if any.
	Captured string `json:"captured,omitempty"`

	// Promotion names the promotion piece, if any.
	Promotion string `json:"promotion,omitempty"`

	// SAN is the move in standard algebraic notation ("e4", "Nf3").
	SAN string `json:"san"`
}
