package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mcoot/farkle-go/internal/model"
)

// Output renders server events for the terminal
type Output struct {
	verbose bool
}

// NewOutput creates a new Output renderer
func NewOutput(verbose bool) *Output {
	return &Output{verbose: verbose}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	fmt.Println(msg)
}

// PrintEvent renders one server event
func (o *Output) PrintEvent(ev Event) {
	if o.verbose {
		fmt.Printf("[%s] %s\n", ev.Type, string(ev.Payload))
	}

	switch ev.Type {
	case model.MessageYouJoinedGame:
		var p model.YouJoinedGamePayload
		if decode(ev, &p) {
			fmt.Printf("Joined game %s as %s. Players: %s\n", p.GameID, p.PlayerName, strings.Join(p.Players, ", "))
		}
	case model.MessageJoinedGame:
		var p model.JoinedGamePayload
		if decode(ev, &p) {
			fmt.Printf("%s joined the game\n", p.PlayerName)
		}
	case model.MessageGameStarted:
		var p model.GameStartedPayload
		if decode(ev, &p) {
			fmt.Printf("Game started. Turn order: %s. %s goes first.\n", strings.Join(p.PlayerTurns, ", "), p.PlayersTurn)
		}
	case model.MessageRolledDice:
		var p model.RolledDicePayload
		if decode(ev, &p) {
			if len(p.PlayerDiceKept) > 0 {
				fmt.Printf("%s kept %v for %d and rolled %v\n", p.PlayerName, p.PlayerDiceKept, p.ScoredThisRoll, p.DiceRolls)
			} else {
				fmt.Printf("%s rolled %v\n", p.PlayerName, p.DiceRolls)
			}
		}
	case model.MessageEndTurn:
		var p model.EndTurnPayload
		if decode(ev, &p) {
			o.printEndTurn(p)
		}
	case model.MessageFailedToCreate, model.MessageFailedToJoin,
		model.MessageFailedToStart, model.MessageFailedToRoll,
		model.MessageFailedToProcess:
		var p model.ErrorPayload
		if decode(ev, &p) {
			fmt.Fprintf(os.Stderr, "Rejected: %s\n", p.ErrorMessage)
		}
	default:
		fmt.Printf("[%s] %s\n", ev.Type, string(ev.Payload))
	}
}

func (o *Output) printEndTurn(p model.EndTurnPayload) {
	if p.Crapout {
		fmt.Printf("%s crapped out on %v and banked %d\n", p.PlayerName, p.DiceRolls, p.ScoredThisTurn)
	} else {
		fmt.Printf("%s banked %d\n", p.PlayerName, p.ScoredThisTurn)
	}
	if p.EndGame {
		fmt.Printf("Game over! %s wins.\n", p.PlayerName)
		return
	}
	fmt.Printf("Round %d: it's %s's turn\n", p.Round, p.NextPlayerTurn)
}

func decode(ev Event, target any) bool {
	if err := json.Unmarshal(ev.Payload, target); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not decode %s payload: %s\n", ev.Type, err)
		return false
	}
	return true
}
