package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swanny246/TuroApp/internal/config"
	"github.com/swanny246/TuroApp/internal/lock"
	"github.com/swanny246/TuroApp/internal/storage"
	v "github.com/swanny246/TuroApp/internal/version"
	"github.com/swanny246/TuroApp/pkg/util"
)

// storagePath overrides STORAGE_PATH when set.
var storagePath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "turo-cli",
		Short: v.AppName + " offline settings tool",
		Long: `Reads and changes the per-guild lock settings stored in the datastore file.
Run it while the bot is stopped; the bot keeps its own copy in memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&storagePath, "storage", "", "datastore file (default $STORAGE_PATH)")

	root.AddCommand(
		newGuildsCmd(),
		newSettingsCmd(),
		newSetPolicyCmd(),
		newSetDelayCmd(),
		newHistoryCmd(),
	)
	return root
}

func openStore() (*storage.Storage, error) {
	st, err := config.LoadStore()
	if err != nil {
		return nil, err
	}
	path := st.StoragePath
	if storagePath != "" {
		path = storagePath
	}
	return storage.New(path, st.Defaults())
}

// withStore opens the datastore for the duration of fn.
func withStore(fn func(cmd *cobra.Command, store *storage.Storage, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}

func newGuildsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guilds",
		Short: "List guilds with stored settings",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, store *storage.Storage, _ []string) error {
			for _, id := range store.Guilds() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}),
	}
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings <guild>",
		Short: "Show the effective lock settings of a guild",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, store *storage.Storage, args []string) error {
			cfg, err := store.Config(args[0])
			if err != nil {
				return err
			}
			printSettings(cmd, cfg)
			return nil
		}),
	}
}

func printSettings(cmd *cobra.Command, cfg lock.GuildConfig) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lock delay: %d seconds\n", cfg.LockDelay)
	for _, c := range lock.Categories() {
		fmt.Fprintf(out, "%s: %s\n", c, cfg.Policy(c))
	}
}

func newSetPolicyCmd() *cobra.Command {
	var (
		duration  int
		permanent bool
	)
	cmd := &cobra.Command{
		Use:   "set-policy <guild> <category>",
		Short: "Set how long a category locks a channel",
		Long: `Set the lock policy of a category. Pass --duration in seconds for a timed
lock (0 ignores the category) or --permanent for a lock that only ends manually.`,
		Args: cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, store *storage.Storage, args []string) error {
			category, err := lock.ParseCategory(args[1])
			if err != nil {
				return err
			}
			var seconds *int
			if cmd.Flags().Changed("duration") {
				seconds = &duration
			}
			policy, err := lock.ParsePolicyRequest(seconds, permanent)
			if err != nil {
				return err
			}
			if err := store.SetPolicy(args[0], category, policy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", category, policy)
			return nil
		}),
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "lock duration in seconds")
	cmd.Flags().BoolVar(&permanent, "permanent", false, "lock until unlocked manually")
	return cmd
}

func newSetDelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-delay <guild> <seconds>",
		Short: "Set the countdown before a channel locks",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(func(cmd *cobra.Command, store *storage.Storage, args []string) error {
			seconds, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delay %q: %w", args[1], err)
			}
			if err := lock.CheckSeconds("lock delay", seconds); err != nil {
				return err
			}
			if err := store.SetLockDelay(args[0], seconds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lock delay: %d seconds\n", seconds)
			return nil
		}),
	}
}

func newHistoryCmd() *cobra.Command {
	var dateFormat string
	cmd := &cobra.Command{
		Use:   "history <guild>",
		Short: "Show the most recent commands used in a guild",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, store *storage.Storage, args []string) error {
			records, err := store.FetchCommandHistory(args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  #%s  %s  /%s\n",
					util.FormatDate(r.Datetime, dateFormat), r.ChannelName, r.Username, r.Command)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&dateFormat, "date-format", "YYYY-MM-DD hh:mm:ss", "timestamp template (YYYY, MM, DD, hh, mm, ss)")
	return cmd
}
