package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/eusougabrielgadelha/charbot/internal/version"
)

// defaultRepository is the GitHub repo releases are published to.
const defaultRepository = "eusougabrielgadelha/charbot"

// CreateUpdateCmd creates the self-update subcommand.
func CreateUpdateCmd() *cobra.Command {
	var repository string
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update to the latest released version",
		Run: func(c *cobra.Command, _ []string) {
			ctx := c.Context()

			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
			if err != nil {
				fmt.Fprintf(os.Stderr, "checking for updates: %v\n", err)
				os.Exit(1)
			}
			if !found {
				fmt.Fprintf(os.Stderr, "no release found for %s\n", repository)
				os.Exit(1)
			}

			current := version.String()
			if latest.LessOrEqual(current) {
				fmt.Printf("already up to date (current %s, latest %s)\n", current, latest.Version())
				return
			}

			fmt.Printf("update available: %s -> %s\n", current, latest.Version())
			if checkOnly {
				return
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "locating executable: %v\n", err)
				os.Exit(1)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				fmt.Fprintf(os.Stderr, "applying update: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("updated to %s, restart to take effect\n", latest.Version())
		},
	}

	cmd.Flags().StringVar(&repository, "repository", defaultRepository, "GitHub repository to update from")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for a newer release")

	return cmd
}
