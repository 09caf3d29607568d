package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

func whoamiCmd(a *app) *cobra.Command {
	var ensure bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the entity that represents you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			name, email := a.cfg.User.Name, a.cfg.User.Email
			if email == "" {
				return fmt.Errorf("user.email is not set; run `socialmap config set user.email you@example.com`")
			}

			if ensure {
				n, created, err := viewmodel.EnsureCurrentUser(ctx, a.api(), name, email)
				if err != nil {
					return err
				}
				if created {
					a.events.Send(ctx, "current_user_created", map[string]any{"id": n.ID})
					fmt.Fprintf(out, "  %s created %s %s\n", ui.StatusIcon(true), n.Name, ui.Subtle.Sprint(n.ID))
					return nil
				}
				fmt.Fprintf(out, "  %s %s %s\n", ui.StatusIcon(true), n.Name, ui.Subtle.Sprint(n.ID))
				return nil
			}

			found, err := a.api().ListEntities(ctx, apiclient.EntityFilter{Search: email})
			if err != nil {
				return err
			}
			for _, n := range found {
				if n.IsCurrentUser && n.ContactEmail != nil && strings.EqualFold(*n.ContactEmail, email) {
					fmt.Fprintf(out, "  %s %s %s\n", ui.StatusIcon(true), n.Name, ui.Subtle.Sprint(n.ID))
					return nil
				}
			}
			fmt.Fprintf(out, "  %s no entity for %s yet; run `socialmap whoami --ensure`\n", ui.WarnIcon(), email)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ensure, "ensure", false, "create your entity when missing")
	return cmd
}
