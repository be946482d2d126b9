package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/spf13/cobra"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Read the user directory",
	}
	cmd.AddCommand(newUsersListCommand(), newUsersGetCommand())
	return cmd
}

func newUsersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				list, err := a.users.GetAll(cmd.Context())
				if err != nil {
					return err
				}
				printUsers(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				user, err := a.users.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printUsers(cmd.OutOrStdout(), []users.User{*user})
				return nil
			})
		},
	}
}

func printUsers(out io.Writer, list []users.User) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No users found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Email", "Created"})
	for _, u := range list {
		created := ""
		if u.CreatedAt != nil {
			created = u.CreatedAt.Format("2006-01-02")
		}
		t.AppendRow(table.Row{u.ID, u.Name, u.Email, created})
	}
	t.Render()
}
