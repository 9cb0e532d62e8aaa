package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/itemkeeper/internal/client/config"
	"github.com/spf13/cobra"
)

// runner holds what survives between command trees: the shell builds a new
// tree per line but keeps one App.
type runner struct {
	cfg     *config.Config
	cfgPath *string
	in      io.Reader
	out     io.Writer
	app     *App
}

// Run executes the CLI with args and returns the first command error.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	r := &runner{cfg: cfg, in: in, out: out}
	defer r.close()

	root := r.newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (r *runner) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "itemkeeper",
		Short:             "Command-line client for the itemkeeper server",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.preRun,
	}
	root.SetIn(r.in)
	root.SetOut(r.out)
	root.SetErr(r.out)

	path := r.cfg.BindFlags(root.PersistentFlags())
	if r.cfgPath == nil {
		r.cfgPath = path
	}

	root.AddCommand(
		newRegisterCmd(r.current),
		newLoginCmd(r.current),
		newLogoutCmd(r.current),
		newForgotPasswordCmd(r.current),
		newResetPasswordCmd(r.current),
		newWhoamiCmd(r.current),
		newItemsCmd(r.current),
		newGRPCCheckCmd(r.current),
		newShellCmd(r),
	)
	return root
}

func (r *runner) preRun(cmd *cobra.Command, _ []string) error {
	if r.app != nil {
		return nil
	}
	if *r.cfgPath != "" {
		if err := r.cfg.ApplyFile(*r.cfgPath, cmd.Flags()); err != nil {
			return err
		}
	}
	app, err := NewApp(cmd.Context(), r.cfg, r.in, r.out)
	if err != nil {
		return err
	}
	r.app = app
	return nil
}

func (r *runner) current() *App {
	return r.app
}

func (r *runner) close() {
	if r.app != nil {
		_ = r.app.Close()
		r.app = nil
	}
}
