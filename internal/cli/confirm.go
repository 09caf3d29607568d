package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/editor"
	"github.com/kevinxuez/social-map/internal/ui"
)

// deleteSelected asks before deleting the record selected in ctrl. yes
// answers the prompt up front.
func deleteSelected(cmd *cobra.Command, ctrl *editor.Controller, yes bool) error {
	if err := ctrl.RequestDelete(); err != nil {
		return err
	}
	p, ok := ctrl.Confirm.Current()
	if !ok {
		return editor.ErrNoPrompt
	}

	out := cmd.OutOrStdout()
	if !yes {
		fmt.Fprintf(out, "%s %s\n  %s [y/N] ", ui.WarnIcon(), ui.Warn.Sprint(p.Title), p.Message)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			ctrl.CancelDelete()
			ui.Subtle.Fprintln(out, "  cancelled")
			return nil
		}
	}

	if err := ctrl.ConfirmDelete(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s deleted\n", ui.StatusIcon(true))
	return nil
}
