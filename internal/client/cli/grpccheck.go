package cli

import (
	"fmt"

	"github.com/dmitrijs2005/itemkeeper/internal/client/grpcclient"
	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

// grpcDialOptions is a test seam for a bufconn dialer.
var grpcDialOptions []grpc.DialOption

// newGRPCCheckCmd checks the gRPC session service end to end: login, an
// authenticated call and logout, on a session separate from the REST one.
func newGRPCCheckCmd(app func() *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "grpc-check",
		Short: "Log in over gRPC, call Me and log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx := cmd.Context()

			var err error
			if email, err = a.ask(email, "Enter email"); err != nil {
				return err
			}
			password, err := a.askPassword("Enter password")
			if err != nil {
				return err
			}

			c, err := grpcclient.New(a.config.GRPCAddr, session.NewStore(), grpcDialOptions...)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Login(ctx, email, password); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			u, err := c.Me(ctx)
			if err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			a.println("gRPC session ok:", u.UserName, "<"+u.Email+">")

			if err := c.Logout(ctx); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			a.println("gRPC logout ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	return cmd
}
