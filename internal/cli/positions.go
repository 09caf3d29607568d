package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/ui"
)

func positionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Pin people to layout coordinates",
	}
	cmd.AddCommand(positionsSetCmd(a))
	return cmd
}

func positionsSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <person> <x> <y> [<person> <x> <y>...]",
		Short: "Save layout positions",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%3 != 0 {
				return fmt.Errorf("expected <person> <x> <y> triples, got %d args", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			g := s.Graph()

			for i := 0; i < len(args); i += 3 {
				n, err := resolveEntity(g, args[i])
				if err != nil {
					return err
				}
				x, err := strconv.ParseFloat(args[i+1], 64)
				if err != nil {
					return fmt.Errorf("x for %s: %w", n.Name, err)
				}
				y, err := strconv.ParseFloat(args[i+2], 64)
				if err != nil {
					return fmt.Errorf("y for %s: %w", n.Name, err)
				}
				s.DragEnd(n.ID, x, y)
			}

			pending := s.DirtyCount()
			if err := s.Flush(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s saved %d position(s)\n", ui.StatusIcon(true), pending)
			return nil
		},
	}
}
