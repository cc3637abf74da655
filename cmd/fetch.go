package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/jon4hz/bankdesk/internal/config"
	"github.com/jon4hz/bankdesk/internal/randomdata"
	"github.com/spf13/cobra"
)

var fetchCmdFlags struct {
	Count uint
}

var fetchCmd = &cobra.Command{
	Use:       "fetch users|banks",
	Short:     "Fetch random records from the data source and print them as JSON",
	Example:   `bankdesk fetch users --count 3`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"users", "banks"},
	RunE:      fetch,
}

func init() {
	fetchCmd.Flags().UintVarP(&fetchCmdFlags.Count, "count", "n", 1, "Number of records to fetch")
	rootCmd.AddCommand(fetchCmd)
}

func fetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	count, err := safecast.Convert[int](fetchCmdFlags.Count)
	if err != nil {
		return fmt.Errorf("invalid count: %w", err)
	}
	if count < 1 || count > cfg.DataSource.MaxAddCount {
		return fmt.Errorf("count must be between 1 and %d", cfg.DataSource.MaxAddCount)
	}

	client := randomdata.New(cfg.DataSource)

	var records any
	switch args[0] {
	case "users":
		records, err = client.RandomUsers(cmd.Context(), count)
	case "banks":
		records, err = client.RandomBanks(cmd.Context(), count)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", args[0], err)
	}
	log.Debug("fetched records", "kind", args[0], "count", count)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
