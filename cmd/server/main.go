// File: cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gemchat",
		Short:         "Chat server relaying Gemini or OpenAI replies over server-sent events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedAdminCmd(),
		newUsersCmd(),
		newChatCmd(),
	)
	return root
}
