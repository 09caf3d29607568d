package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/contactcheck"
	"github.com/kevinxuez/social-map/internal/ui"
)

func contactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Check contact details",
	}
	cmd.AddCommand(contactsCheckCmd(a))
	return cmd
}

func contactsCheckCmd(a *app) *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that each contact email's domain accepts mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			people, err := a.api().ListEntities(ctx, apiclient.EntityFilter{})
			if err != nil {
				return err
			}
			var emails, names []string
			for _, p := range people {
				if p.ContactEmail == nil || *p.ContactEmail == "" {
					continue
				}
				emails = append(emails, *p.ContactEmail)
				names = append(names, p.Name)
			}
			out := cmd.OutOrStdout()
			if len(emails) == 0 {
				ui.Subtle.Fprintln(out, "  nobody has a contact email")
				return nil
			}

			if server == "" {
				server = a.cfg.DNS.Server
			}
			r, err := contactcheck.NewResolver(server, timeout)
			if err != nil {
				return err
			}
			results, checkErr := r.CheckAll(ctx, emails)

			rows := make([][]string, 0, len(results))
			bad := 0
			for i, res := range results {
				if !res.Deliverable() {
					bad++
				}
				rows = append(rows, []string{
					ui.StatusIcon(res.Deliverable()),
					names[i],
					res.Email,
					res.Status,
					ui.Dash(strings.Join(res.Hosts, ", ")),
				})
			}
			ui.Table(out, []string{"", "NAME", "EMAIL", "STATUS", "MAIL HOSTS"}, rows)
			if checkErr != nil {
				return checkErr
			}
			if bad > 0 {
				fmt.Fprintf(out, "\n  %s %d of %d addresses cannot receive mail\n", ui.WarnIcon(), bad, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "DNS server host:port (default from config, then resolv.conf)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "per-query timeout")
	return cmd
}
