// Package rules validates positions and moves against the laws of chess
// and renders engine move codes into human-facing descriptions.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Sentinel errors for rule violations.
var (
	// ErrInvalidFEN indicates the position string does not decode.
	ErrInvalidFEN = errors.New("rules: invalid fen")

	// ErrIllegalMove indicates the move is not legal in the position.
	ErrIllegalMove = errors.New("rules: illegal move")
)

var pieceNames = map[chess.PieceType]string{
	chess.King:   "King",
	chess.Queen:  "Queen",
	chess.Rook:   "Rook",
	chess.Bishop: "Bishop",
	chess.Knight: "Knight",
	chess.Pawn:   "Pawn",
}

// Description is the rule-validated rendering of an engine move.
type Description struct {
	// From and To are the origin and destination squares ("e2", "e4").
	// For castling they are the king's squares.
	From string
	To   string

	// Piece is the moved piece's name ("Pawn", "Knight", ...).
	Piece string

	// Captured names the captured piece, empty when the move captures
	// nothing.
	Captured string

	// Promotion names the promotion piece, empty when the move does not
	// promote.
	Promotion string

	// SAN is the move in standard algebraic notation ("e4", "Nf3", "O-O").
	SAN string
}

// ParseFEN decodes and validates a FEN position string.
func ParseFEN(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return chess.NewGame(opt).Position(), nil
}

// Describe validates a UCI move code against the position and derives
// the move's full description. A code that does not match any legal
// move fails with ErrIllegalMove.
func Describe(pos *chess.Position, uciMove string) (Description, error) {
	code := strings.ToLower(strings.TrimSpace(uciMove))
	move := findLegalMove(pos, code)
	if move == nil {
		return Description{}, fmt.Errorf("%w: %q", ErrIllegalMove, uciMove)
	}

	d := Description{
		From:  move.S1().String(),
		To:    move.S2().String(),
		Piece: pieceNames[pos.Board().Piece(move.S1()).Type()],
		SAN:   chess.AlgebraicNotation{}.Encode(pos, move),
	}
	switch {
	case move.HasTag(chess.EnPassant):
		d.Captured = pieceNames[chess.Pawn]
	case move.HasTag(chess.Capture):
		d.Captured = pieceNames[pos.Board().Piece(move.S2()).Type()]
	}
	if move.Promo() != chess.NoPieceType {
		d.Promotion = pieceNames[move.Promo()]
	}
	return d, nil
}

// findLegalMove matches a UCI move code against the position's legal
// moves. Matching against the generated move set, rather than decoding
// the code in isolation, is what makes an engine protocol desync
// detectable.
func findLegalMove(pos *chess.Position, code string) *chess.Move {
	notation := chess.UCINotation{}
	for _, move := range pos.ValidMoves() {
		if notation.Encode(pos, move) == code {
			return move
		}
	}
	return nil
}
