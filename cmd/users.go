package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users present in the memory database",
	RunE:  runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	st, _, err := newStore()
	if err != nil {
		return err
	}

	users, err := st.ListUsers(cmd.Context())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users stored yet.")
		return nil
	}
	for _, u := range users {
		fmt.Printf("%-32s %4d memories %4d preferences\n", u.UserID, u.MemoryCount, u.PreferenceCount)
	}
	return nil
}
