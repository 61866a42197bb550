package engine

import (
	"fmt"
	"strings"
)

// Engine option names set on every checkout.
const (
	optSkillLevel = "Skill Level"
	optMultiPV    = "MultiPV"
)

// command is a single line of the engine's text protocol. Commands are
// built through the constructors below so request data can never smuggle
// extra protocol lines into the stream.
type command string

func cmdUCI() command     { return "uci" }
func cmdIsReady() command { return "isready" }
func cmdNewGame() command { return "ucinewgame" }
func cmdStop() command    { return "stop" }
func cmdQuit() command    { return "quit" }

func cmdSetOption(name string, value int) command {
	return command(fmt.Sprintf("setoption name %s value %d", name, value))
}

func cmdGoDepth(depth int) (command, error) {
	if depth < 1 {
		return "", fmt.Errorf("engine: search depth must be positive, got %d", depth)
	}
	return command(fmt.Sprintf("go depth %d", depth)), nil
}

func cmdPosition(fen string) (command, error) {
	if fen == "" {
		return "", fmt.Errorf("engine: empty fen")
	}
	if strings.ContainsAny(fen, "\r\n") {
		return "", fmt.Errorf("engine: fen contains line breaks")
	}
	return command("position fen " + fen), nil
}
