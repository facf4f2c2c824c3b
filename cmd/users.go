package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driveops/testledger/models"
)

var (
	userRole        string
	userLocation    string
	userPermissions []string
)

// usersCmd groups the user-directory verbs
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the user directory (admin only)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List directory users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		users, err := svc.ListUsers(actor)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		for _, u := range users {
			cmd.Printf("%s  %-20s  %-12s  %s  [%s]\n", u.ID, u.Username, u.Role, u.Location, strings.Join(u.Permissions, ","))
		}
		return nil
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Add a directory user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		user, err := svc.CreateUser(actor, models.User{
			Username:    args[0],
			Role:        models.Role(userRole),
			Location:    userLocation,
			Permissions: userPermissions,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		cmd.Printf("Created user %s (%s)\n", user.ID, user.Username)
		return nil
	},
}

var usersRoleCmd = &cobra.Command{
	Use:   "role <user-id> <role>",
	Short: "Change a user's role",
	Long: `Change a user's role to admin, data_manager, or viewer. Demoting
the last remaining admin is refused.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		user, err := svc.ChangeUserRole(actor, args[0], models.Role(args[1]))
		if err != nil {
			return fmt.Errorf("change role: %w", err)
		}
		cmd.Printf("User %s is now %s\n", user.Username, user.Role)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Remove a directory user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, actor, closeStore, err := openService()
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		if err := svc.DeleteUser(actor, args[0]); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		cmd.Println("User deleted.")
		return nil
	},
}

func init() {
	usersCreateCmd.Flags().StringVar(&userRole, "role", "viewer", "role (admin, data_manager, viewer)")
	usersCreateCmd.Flags().StringVar(&userLocation, "location", "", "home location")
	usersCreateCmd.Flags().StringSliceVar(&userPermissions, "permissions", nil, "accessible locations (defaults to home location)")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersRoleCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}
