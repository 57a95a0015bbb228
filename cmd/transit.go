package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

var transitCmd = &cobra.Command{
	Use:   "transit <address>",
	Short: "Print the transit profile for an address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		profile, err := env.Transit.Profile(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			if upstream.IsNotFound(err) {
				fmt.Println("address not found")
				return nil
			}
			return err
		}

		raw, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal profile")
		}
		fmt.Println(string(raw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transitCmd)
}
