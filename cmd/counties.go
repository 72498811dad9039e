package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/hartylabs/housing-atlas/internal/atlas"
)

var countiesCmd = &cobra.Command{
	Use:   "counties",
	Short: "Print the merged county table",
	Long:  "Runs one fetch cycle and prints each county with both ratios, formatted as percentages. Useful as an operator check before serving.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildAtlas(cfg)
		if err != nil {
			return err
		}

		snap, err := a.Snapshot(ctx)
		if err != nil {
			return eris.Wrap(err, "counties")
		}

		fmt.Printf("%-7s %-35s %12s %12s\n", "FIPS", "County", "Rental ROI", "Tax Rate")
		fmt.Println(strings.Repeat("-", 70))
		for _, c := range snap.Counties {
			fmt.Printf("%-7s %-35s %12s %12s\n",
				c.FIPS, c.Name,
				atlas.FormatPercent(c.RentalYield),
				atlas.FormatPercent(c.TaxBurden),
			)
		}
		fmt.Printf("\n%d counties, snapshot %s fetched %s\n",
			len(snap.Counties), snap.ID, snap.FetchedAt.Format("2006-01-02 15:04:05 MST"))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(countiesCmd)
}
