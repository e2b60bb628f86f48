package users

import (
	"fmt"
	"time"

	"github.com/crucial707/scantron/cmd/cli/client"
	"github.com/crucial707/scantron/cmd/cli/config"
	"github.com/crucial707/scantron/cmd/cli/output"
	"github.com/crucial707/scantron/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage console users (admin only)",
		Long: `List, create and delete console users and change their role.
Use "scantron login --register" to create your own account.`,
	}

	usersCmd.AddCommand(listUsersCmd(), createUserCmd(), setRoleCmd(), deleteUserCmd())
	rootCmd.AddCommand(usersCmd)
}

var userHeaders = []string{"ID", "Username", "Role", "Created"}

func userRows(list []models.User) [][]interface{} {
	rows := make([][]interface{}, 0, len(list))
	for _, u := range list {
		rows = append(rows, []interface{}{u.ID, u.Username, u.Role, u.CreatedAt.Format(time.RFC3339)})
	}
	return rows
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var page client.List[models.User]
			if err := c.Get(cmd.Context(), "/v1/users", client.Page(limit, offset), &page); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), page, userHeaders, userRows(page.Items))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of users")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of users to skip")
	return cmd
}

// ==========================
// Create User
// ==========================
func createUserCmd() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.Authed()
			if err != nil {
				return err
			}
			payload := map[string]string{"username": username, "password": password, "role": role}
			var u models.User
			if err := c.Post(cmd.Context(), "/v1/users", payload, &u); err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), config.Output(), u, userHeaders, userRows([]models.User{u}))
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", models.RoleViewer, "role: viewer or admin")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

// ==========================
// Change Role
// ==========================
func setRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role [id] [viewer|admin]",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := client.Authed()
			if err != nil {
				return err
			}
			var u models.User
			if err := c.Patch(cmd.Context(), fmt.Sprintf("/v1/users/%d", id), map[string]string{"role": args[1]}, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s is now %s\n", u.Username, u.Role)
			return nil
		},
	}
}

// ==========================
// Delete User
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := client.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := client.Authed()
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), fmt.Sprintf("/v1/users/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted\n", id)
			return nil
		},
	}
}
