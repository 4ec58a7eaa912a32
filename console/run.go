package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"weather-client/models"
	"weather-client/session"
)

const helpText = `Commands:
  <city>            look up a city
  search <city>     same as above
  locate            use the current location
  unit c|f          switch between Celsius and Fahrenheit
  show              print the last result again
  help              show this help
  quit              exit`

// Run reads commands from in until EOF, quit or ctx is done. Failures of a
// command are already printed by the session's view, so only I/O errors end
// the loop with an error.
func Run(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if quit := execute(ctx, sess, line, out); quit {
			return nil
		}
		prompt(out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read command: %w", err)
	}
	return nil
}

func execute(ctx context.Context, sess *session.Session, line string, out io.Writer) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(out, helpText)
	case "show":
		d, ok := sess.Display()
		if !ok {
			fmt.Fprintln(out, "No weather loaded yet.")
			return false
		}
		writeDisplay(out, d)
	case "unit":
		unit, err := models.ParseUnit(arg)
		if err != nil {
			fmt.Fprintln(out, "Usage: unit c|f")
			return false
		}
		if err := sess.SwitchUnit(ctx, unit); err != nil {
			fmt.Fprintf(out, "Warning: %v\n", err)
		}
	case "locate":
		report(out, sess.Locate(ctx))
	case "search":
		report(out, sess.Search(ctx, arg))
	default:
		report(out, sess.Search(ctx, line))
	}
	return false
}

// report prints errors the view did not already show.
func report(out io.Writer, err error) {
	if err == nil || errors.Is(err, session.ErrSuperseded) {
		return
	}
	if session.KindOf(err) != "" {
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

func prompt(out io.Writer) {
	fmt.Fprint(out, "> ")
}
