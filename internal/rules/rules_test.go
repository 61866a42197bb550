package rules

import (
	"errors"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestParseFEN_Valid(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}
	if pos == nil {
		t.Fatal("ParseFEN() returned nil position")
	}
}

func TestParseFEN_Invalid(t *testing.T) {
	for _, fen := range []string{
		"",
		"not a fen",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1", // missing rank
	} {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) error = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestDescribe_PawnPush(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "e2e4")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	want := Description{From: "e2", To: "e4", Piece: "Pawn", SAN: "e4"}
	if d != want {
		t.Errorf("Describe() = %+v, want %+v", d, want)
	}
}

func TestDescribe_KnightDevelopment(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "g1f3")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Piece != "Knight" || d.SAN != "Nf3" {
		t.Errorf("Describe() = %+v, want Knight / Nf3", d)
	}
}

func TestDescribe_Capture(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "e4d5")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Captured != "Pawn" {
		t.Errorf("Captured = %q, want Pawn", d.Captured)
	}
	if d.SAN != "exd5" {
		t.Errorf("SAN = %q, want exd5", d.SAN)
	}
}

func TestDescribe_EnPassant(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "e5f6")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Captured != "Pawn" {
		t.Errorf("Captured = %q, want Pawn", d.Captured)
	}
	if d.From != "e5" || d.To != "f6" {
		t.Errorf("From/To = %s/%s, want e5/f6", d.From, d.To)
	}
}

func TestDescribe_Promotion(t *testing.T) {
	pos, err := ParseFEN("8/P6k/8/8/8/8/8/7K w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "a7a8q")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Promotion != "Queen" {
		t.Errorf("Promotion = %q, want Queen", d.Promotion)
	}
	if d.SAN != "a8=Q" {
		t.Errorf("SAN = %q, want a8=Q", d.SAN)
	}
}

func TestDescribe_Castle(t *testing.T) {
	pos, err := ParseFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "e1g1")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.Piece != "King" || d.From != "e1" || d.To != "g1" {
		t.Errorf("Describe() = %+v, want King e1 -> g1", d)
	}
	if d.Captured != "" {
		t.Errorf("Captured = %q, want empty", d.Captured)
	}
	if d.SAN != "O-O" {
		t.Errorf("SAN = %q, want O-O", d.SAN)
	}
}

func TestDescribe_IllegalMove(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	for _, code := range []string{"e2e5", "e7e5", "a1a8", "zz99", ""} {
		if _, err := Describe(pos, code); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Describe(%q) error = %v, want ErrIllegalMove", code, err)
		}
	}
}

func TestDescribe_UppercaseCodeAccepted(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	d, err := Describe(pos, "E2E4")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if d.To != "e4" {
		t.Errorf("To = %q, want e4", d.To)
	}
}
