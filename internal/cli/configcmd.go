package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/config"
	"github.com/kevinxuez/social-map/internal/ui"
)

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the settings in use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				ui.Subtle.Fprintln(out, "  "+config.Path())
				rows := [][]string{}
				for _, k := range a.cfg.Keys() {
					v, _ := a.cfg.Get(k)
					if (k == "token" || k == "map.token") && v != "" {
						v = mask(v)
					}
					rows = append(rows, []string{k, ui.Dash(v)})
				}
				rows = append(rows, []string{"api_base (effective)", a.apiBase()})
				ui.Table(out, []string{"KEY", "VALUE"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.Save(a.cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s updated\n", ui.StatusIcon(true), args[0])
				return nil
			},
		},
	)
	return cmd
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
