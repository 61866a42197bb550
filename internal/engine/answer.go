package engine

import (
	"strconv"
	"strings"
)

// noMove is what the engine reports for positions with no legal move.
const noMove = "(none)"

// Answer is the engine's reply to a search: the chosen move plus the last
// reported score. Exactly one of CP and Mate is set when the engine
// produced score output; CP is centipawns from the side to move's
// perspective, Mate is the signed distance to mate.
type Answer struct {
	BestMove string
	CP       *int
	Mate     *int
}

// consume parses one line of search output into the answer.
// It returns true once the terminating bestmove line has been seen.
func (a *Answer) consume(line string) bool {
	switch {
	case strings.HasPrefix(line, "info "):
		a.consumeScore(line)
		return false
	case strings.HasPrefix(line, "bestmove"):
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			a.BestMove = fields[1]
		}
		return true
	}
	return false
}

// consumeScore extracts "score cp N" or "score mate N" from an info line.
// Later info lines supersede earlier ones.
func (a *Answer) consumeScore(line string) {
	fields := strings.Fields(line)
	for i := 0; i+2 < len(fields); i++ {
		if fields[i] != "score" {
			continue
		}
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return
		}
		switch fields[i+1] {
		case "cp":
			a.CP = &n
			a.Mate = nil
		case "mate":
			a.Mate = &n
			a.CP = nil
		}
		return
	}
}

// Score collapses the answer's evaluation into a single integer the way
// the wire response reports it: mate distance when a forced mate was
// found, centipawns otherwise, zero when the engine reported no score.
func (a *Answer) Score() int {
	if a.Mate != nil {
		return *a.Mate
	}
	if a.CP != nil {
		return *a.CP
	}
	return 0
}
