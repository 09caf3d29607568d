package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

func edgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edge",
		Aliases: []string{"connection"},
		Short:   "Connect people and label connections",
	}
	cmd.AddCommand(edgeAddCmd(a), edgeLabelCmd(a), edgeRemoveCmd(a))
	return cmd
}

func edgeAddCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "add <person> <person>",
		Short: "Connect two people",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			x, y, err := resolvePair(s.Graph(), args[0], args[1])
			if err != nil {
				return err
			}
			id, err := a.api().CreateEdge(ctx, x.ID, y.ID, naming.Optional(label))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s connected %s and %s %s\n", ui.StatusIcon(true), x.Name, y.Name, ui.Subtle.Sprint(id))
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "connection label")
	return cmd
}

func edgeLabelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "label <edge-id> [label]",
		Short: "Set a connection label; omit the label to clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, s, err := a.controller(ctx)
			if err != nil {
				return err
			}
			l, ok := s.Graph().Link(args[0])
			if !ok {
				return fmt.Errorf("no connection with id %q", args[0])
			}

			ctrl.Labels.Begin(l.ID, l.Label)
			if len(args) == 1 {
				err = ctrl.Labels.Clear(ctx)
			} else {
				ctrl.Labels.Type(args[1])
				err = ctrl.Labels.Finish(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s label saved\n", ui.StatusIcon(true))
			return nil
		},
	}
}

func edgeRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <edge-id> | rm <person> <person>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a connection",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			if len(args) == 2 {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				g := s.Graph()
				x, y, err := resolvePair(g, args[0], args[1])
				if err != nil {
					return err
				}
				l, ok := g.LinkBetween(x.ID, y.ID)
				if !ok {
					return fmt.Errorf("%s and %s are not connected", x.Name, y.Name)
				}
				id = l.ID
			}
			if err := a.api().DeleteEdge(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s connection removed\n", ui.StatusIcon(true))
			return nil
		},
	}
}

func resolvePair(g *viewmodel.Graph, a, b string) (viewmodel.Node, viewmodel.Node, error) {
	x, err := resolveEntity(g, a)
	if err != nil {
		return viewmodel.Node{}, viewmodel.Node{}, err
	}
	y, err := resolveEntity(g, b)
	if err != nil {
		return viewmodel.Node{}, viewmodel.Node{}, err
	}
	if x.ID == y.ID {
		return viewmodel.Node{}, viewmodel.Node{}, fmt.Errorf("cannot connect %s to themselves", x.Name)
	}
	return x, y, nil
}
