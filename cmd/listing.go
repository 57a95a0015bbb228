package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/haihuyentran/melbourne-properties/internal/extract"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
)

var listingCmd = &cobra.Command{
	Use:   "listing <url>",
	Short: "Fetch a listing page and print its extracted attributes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Fetcher.GetAny(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		listing, err := extract.Extract(resp.Body, resp.FinalURL)
		if err != nil {
			if upstream.IsBlocked(err) {
				fmt.Println("the site challenged the request; enter the listing details manually")
			}
			return err
		}

		raw, err := json.MarshalIndent(listing, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal listing")
		}
		fmt.Println(string(raw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listingCmd)
}
