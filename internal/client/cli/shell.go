package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newShellCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session; one login serves many commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.shell(cmd.Context())
		},
	}
}

// shell is a read-eval-print loop over the same command tree. Each line is
// run against a fresh tree bound to the running App, so flag values do not
// leak between lines. The loop ends on EOF, "exit" or "quit".
func (r *runner) shell(ctx context.Context) error {
	a := r.app
	fmt.Fprintln(a.out, "Welcome to itemkeeper (type 'help' for commands)")
	if a.presence.Ensure(ctx) {
		fmt.Fprintln(a.out, "Session restored")
	}

	for {
		fmt.Fprintf(a.out, "ik (%s)> ", a.store.State())
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		parts := strings.Fields(line)
		switch {
		case len(parts) == 0:
		case parts[0] == "exit" || parts[0] == "quit":
			fmt.Fprintln(a.out, "Bye!")
			return nil
		case parts[0] == "shell":
			fmt.Fprintln(a.out, "Already in a shell")
		default:
			root := r.newRootCmd()
			root.SetArgs(parts)
			if err := root.ExecuteContext(ctx); err != nil {
				fmt.Fprintln(a.out, "Error:", err)
			}
		}

		if eof {
			fmt.Fprintln(a.out)
			return nil
		}
	}
}
