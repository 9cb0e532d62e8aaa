package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/itemkeeper/internal/client/models"
	"github.com/spf13/cobra"
)

func newItemsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage your items",
	}
	// cobra runs only the nearest persistent hook, so the root one is
	// called by hand before the login gate.
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if root := cmd.Root(); root != cmd && root.PersistentPreRunE != nil {
			if err := root.PersistentPreRunE(c, args); err != nil {
				return err
			}
		}
		return app().requireLogin(c.Context())
	}
	cmd.AddCommand(
		newItemsListCmd(app),
		newItemsAddCmd(app),
		newItemsShowCmd(app),
		newItemsUpdateCmd(app),
		newItemsDeleteCmd(app),
	)
	return cmd
}

func newItemsListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			items, err := a.api.ListItems(cmd.Context())
			if err != nil {
				return describe(err)
			}
			if len(items) == 0 {
				a.println("No items")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.UpdatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func newItemsAddCmd(app func() *App) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if name, err = a.ask(name, "Enter name"); err != nil {
				return err
			}
			it, err := a.api.CreateItem(cmd.Context(), name, description)
			if err != nil {
				return describe(err)
			}
			a.println("Created", it.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "item name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "item description")
	return cmd
}

func newItemsShowCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			it, err := a.api.GetItem(cmd.Context(), args[0])
			if err != nil {
				return describe(err)
			}
			printItem(a, it)
			return nil
		},
	}
}

func newItemsUpdateCmd(app func() *App) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change an item's name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			it, err := a.api.UpdateItem(cmd.Context(), args[0], name, description)
			if err != nil {
				return describe(err)
			}
			printItem(a, it)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newItemsDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.api.DeleteItem(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			a.println("Item deleted successfully")
			return nil
		},
	}
}

func printItem(a *App, it *models.Item) {
	fmt.Fprintf(a.out, "ID:          %s\n", it.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", it.Name)
	fmt.Fprintf(a.out, "Description: %s\n", it.Description)
	fmt.Fprintf(a.out, "Created:     %s\n", it.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "Updated:     %s\n", it.UpdatedAt.Local().Format(time.DateTime))
}
