package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/billmal071/olsearch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and modify olsearch configuration.

Settings live in config.yaml under the config directory (olsearch config
path). Every key can also be set through the environment, e.g.
OLSEARCH_NETWORK_TIMEOUT=10s, or from a .env file in the working directory.
Values are checked against the type of the key's default.

Examples:
  olsearch config                              List every key
  olsearch config get network.timeout
  olsearch config set network.retry_attempts 3
  olsearch config set search.fields key,title,author_name
  olsearch config set openlibrary.resource search/authors`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every key with its current value",
	Args:    cobra.NoArgs,
	RunE:    runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := config.Default(args[0]); !ok {
			return fmt.Errorf("%w: %s (see 'olsearch config list')", config.ErrUnknownKey, args[0])
		}
		fmt.Fprintf(out(), "%s = %v\n", args[0], config.GetValue(args[0]))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Set a configuration value",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		Successf("%s = %v", args[0], config.GetValue(args[0]))
		Printf("Config saved to: %s\n", config.GetConfigPath())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration and database locations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tw := tabwriter.NewWriter(out(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Config dir:\t%s\n", config.GetConfigDir())
		fmt.Fprintf(tw, "Config file:\t%s\n", config.GetConfigPath())
		fmt.Fprintf(tw, "Database:\t%s\n", config.GetDBPath())
		_ = tw.Flush()
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigList(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(out(), 0, 0, 2, ' ', 0)
	for _, key := range config.Keys() {
		value := config.GetValue(key)
		marker := ""
		if def, _ := config.Default(key); !sameValue(value, def) {
			marker = "\t(changed)"
		}
		fmt.Fprintf(tw, "%s\t%v%s\n", key, value, marker)
	}
	return tw.Flush()
}

// sameValue compares by printed form, since values read from a file or the
// environment do not carry the default's type
func sameValue(value, def any) bool {
	return fmt.Sprint(value) == fmt.Sprint(def)
}

// newToggleCmd builds an enable or disable subcommand for a boolean key
func newToggleCmd(key, noun string, enable bool) *cobra.Command {
	use, verb := "disable", "disabled"
	if enable {
		use, verb = "enable", "enabled"
	}
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Set %s to %t", key, enable),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(key, strconv.FormatBool(enable)); err != nil {
				return fmt.Errorf("failed to update %s: %w", key, err)
			}
			Successf("%s %s", noun, verb)
			return nil
		},
	}
}

func enabledStatus(enabled bool) string {
	if enabled {
		return "enabled ✓"
	}
	return "disabled"
}

func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys(), cobra.ShellCompDirectiveNoFileComp
}
