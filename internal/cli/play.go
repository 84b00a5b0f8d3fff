package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/farkle-go/internal/model"
)

const playHelp = `Commands:
  create <name>          create a game and join it as <name>
  join <gameId> <name>   join an existing game as <name>
  start                  start the game
  roll [dice...]         keep the given dice and roll the rest (no dice on a fresh turn)
  bank <dice...>         keep the given dice and bank the turn score
  help                   show this help
  quit                   disconnect and exit`

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Connect to a server and play interactively",
		RunE:  runPlay,
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := Dial(ctx, cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := NewOutput(cfg.Verbose)
	go func() {
		for ev := range client.Events() {
			out.PrintEvent(ev)
		}
	}()

	out.PrintMessage("Connected to " + cfg.ServerURL)
	out.PrintMessage(playHelp)

	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Print("> "); scanner.Scan(); fmt.Print("> ") {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "create":
			if len(fields) != 2 {
				out.PrintMessage("usage: create <name>")
				continue
			}
			err = client.CreateGame(ctx, fields[1])
		case "join":
			if len(fields) != 3 {
				out.PrintMessage("usage: join <gameId> <name>")
				continue
			}
			err = client.JoinGame(ctx, fields[2], model.GameID(fields[1]))
		case "start":
			err = client.StartGame(ctx)
		case "roll":
			var dice []int
			if dice, err = parseDice(fields[1:]); err == nil {
				err = client.RollDice(ctx, dice, false)
			}
		case "bank":
			var dice []int
			if dice, err = parseDice(fields[1:]); err == nil {
				err = client.RollDice(ctx, dice, true)
			}
		case "help":
			out.PrintMessage(playHelp)
		case "quit", "exit":
			return nil
		default:
			out.PrintMessage("unknown command (try 'help')")
		}

		if err != nil {
			out.PrintError(err)
		}
	}
	return scanner.Err()
}

func parseDice(args []string) ([]int, error) {
	dice := make([]int, 0, len(args))
	for _, arg := range args {
		d, err := strconv.Atoi(arg)
		if err != nil || d < 1 || d > 6 {
			return nil, fmt.Errorf("invalid die %q: must be 1-6", arg)
		}
		dice = append(dice, d)
	}
	return dice, nil
}
