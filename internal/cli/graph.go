package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/editor"
	"github.com/kevinxuez/social-map/internal/geometry"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

func graphCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the graph, its group hulls, or follow it live",
	}
	cmd.AddCommand(graphShowCmd(a), graphHullsCmd(a), graphHitCmd(a), graphWatchCmd(a))
	return cmd
}

func graphShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print nodes, links and groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if asJSON {
				snap, err := a.api().GetGraph(ctx)
				if err != nil {
					return err
				}
				snap.Normalize()
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}

			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			printGraph(out, s.Graph())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw snapshot as JSON")
	return cmd
}

func printGraph(w io.Writer, g *viewmodel.Graph) {
	ui.Brand.Fprintf(w, "Groups (%d)\n", len(g.Groups))
	rows := make([][]string, 0, len(g.Groups))
	for _, gr := range g.Groups {
		parent := ""
		if gr.ParentID != nil {
			if p, ok := g.Group(*gr.ParentID); ok {
				parent = p.Name
			}
		}
		rows = append(rows, []string{gr.ID, gr.Name, gr.DisplayColor(), ui.Dash(parent), strconv.Itoa(len(gr.MemberIDs))})
	}
	ui.Table(w, []string{"ID", "NAME", "COLOR", "PARENT", "MEMBERS"}, rows)
	fmt.Fprintln(w)

	ui.Brand.Fprintf(w, "People (%d)\n", len(g.Nodes))
	rows = rows[:0]
	for _, n := range g.Nodes {
		name := n.Name
		if n.IsCurrentUser {
			name += " (you)"
		}
		main := ""
		if n.MainGroupID != nil {
			main = groupNames(g, []string{*n.MainGroupID})
		}
		rows = append(rows, []string{
			n.ID,
			name,
			ui.Dash(deref(n.ContactEmail)),
			ui.Dash(groupNames(g, n.GroupIDs)),
			ui.Dash(main),
			fmt.Sprintf("%.0f,%.0f", n.X, n.Y),
		})
	}
	ui.Table(w, []string{"ID", "NAME", "EMAIL", "GROUPS", "MAIN", "POS"}, rows)
	fmt.Fprintln(w)

	ui.Brand.Fprintf(w, "Connections (%d)\n", len(g.Links))
	rows = rows[:0]
	for _, l := range g.Links {
		rows = append(rows, []string{l.ID, nodeName(g, l.Source), nodeName(g, l.Target), ui.Dash(deref(l.Label))})
	}
	ui.Table(w, []string{"ID", "A", "B", "LABEL"}, rows)
}

func graphHullsCmd(a *app) *cobra.Command {
	var (
		saved bool
		pad   float64
	)
	cmd := &cobra.Command{
		Use:   "hulls",
		Short: "Print the outline drawn around each group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var hulls []geometry.GroupHull
			if saved {
				snap, err := a.api().GetGraph(ctx)
				if err != nil {
					return err
				}
				snap.Normalize()
				hulls = geometry.SnapshotHulls(snap, pad)
			} else {
				s, err := a.session(ctx)
				if err != nil {
					return err
				}
				hulls = s.Graph().Hulls(pad)
			}

			out := cmd.OutOrStdout()
			if len(hulls) == 0 {
				ui.Subtle.Fprintln(out, "  no group has positioned members")
				return nil
			}
			rows := make([][]string, 0, len(hulls))
			for _, h := range hulls {
				rows = append(rows, []string{h.Name, strconv.Itoa(len(h.Polygon)), h.Fill, h.Stroke, formatPolygon(h.Polygon)})
			}
			ui.Table(out, []string{"GROUP", "POINTS", "FILL", "STROKE", "POLYGON"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&saved, "saved", false, "use saved positions only, skipping unplaced members")
	cmd.Flags().Float64Var(&pad, "pad", geometry.DefaultPadding, "padding around member positions")
	return cmd
}

func formatPolygon(p geometry.Polygon) string {
	parts := make([]string, 0, len(p))
	for _, pt := range p {
		parts = append(parts, fmt.Sprintf("(%.0f,%.0f)", pt.X, pt.Y))
	}
	return strings.Join(parts, " ")
}

func graphHitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hit <x> <y>",
		Short: "Show which group outline contains a point",
		Long:  "Show which group outline contains a point. Outlines are built from saved positions only, so members that were never placed do not count.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}

			ctx := cmd.Context()
			s, err := a.session(ctx)
			if err != nil {
				return err
			}
			snap, err := a.api().GetGraph(ctx)
			if err != nil {
				return err
			}
			view := savedHullView{Session: s, hulls: geometry.SnapshotHulls(snap, geometry.DefaultPadding)}
			ctrl := editor.NewController(a.log, a.api(), view, syncEvents{a.events})

			out := cmd.OutOrStdout()
			if !ctrl.ClickCanvas(geometry.Point{X: x, Y: y}) {
				ui.Subtle.Fprintln(out, "  no group at that point")
				return nil
			}
			v, _ := ctrl.Drawer.State().(editor.Viewing)
			gr, _ := s.Graph().Group(v.ID)
			fmt.Fprintf(out, "  %s %s\n", ui.StatusIcon(true), gr.Name)
			return nil
		},
	}
}

// savedHullView answers hull queries from saved positions instead of the
// session's scattered layout.
type savedHullView struct {
	*viewmodel.Session
	hulls []geometry.GroupHull
}

func (v savedHullView) Hulls() []geometry.GroupHull { return v.hulls }

func graphWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the graph until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := viewmodel.NewSession(a.log, a.api(), viewmodel.Options{PollInterval: interval})

			var mu sync.Mutex
			s.OnUpdate(func(g *viewmodel.Graph) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "%s  %d people, %d connections, %d groups\n",
					ui.Subtle.Sprint(time.Now().Format(time.TimeOnly)), len(g.Nodes), len(g.Links), len(g.Groups))
			})

			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "poll interval")
	return cmd
}
