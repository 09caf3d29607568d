package cli

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/editor"
	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

func entityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entity",
		Aliases: []string{"person", "people"},
		Short:   "List and edit people",
	}
	cmd.AddCommand(
		entityListCmd(a),
		entityShowCmd(a),
		entityAddCmd(a),
		entityEditCmd(a),
		entityRemoveCmd(a),
	)
	return cmd
}

func entityListCmd(a *app) *cobra.Command {
	var search, group string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List people, optionally filtered by name, email or group",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := a.api()

			groups, err := c.ListGroups(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(groups))
			for _, g := range groups {
				names[g.ID] = g.Name
			}

			filter := apiclient.EntityFilter{Search: search}
			if group != "" {
				filter.GroupID = group
				if _, err := uuid.Parse(group); err != nil {
					filter.GroupID = ""
					for _, g := range groups {
						if naming.Key(g.Name) == naming.Key(group) {
							filter.GroupID = g.ID
							break
						}
					}
					if filter.GroupID == "" {
						return fmt.Errorf("no group matches %q", group)
					}
				}
			}

			people, err := c.ListEntities(ctx, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(people) == 0 {
				ui.Subtle.Fprintln(out, "  no people found")
				return nil
			}
			rows := make([][]string, 0, len(people))
			for _, p := range people {
				var gs []string
				for _, gid := range p.GroupIDs {
					gs = append(gs, names[gid])
				}
				main := ""
				if p.MainGroupID != nil {
					main = names[*p.MainGroupID]
				}
				rows = append(rows, []string{
					p.ID,
					p.Name,
					ui.Dash(deref(p.ContactEmail)),
					ui.Dash(deref(p.ContactPhone)),
					ui.Dash(joinNonEmpty(gs)),
					ui.Dash(main),
				})
			}
			ui.Table(out, []string{"ID", "NAME", "EMAIL", "PHONE", "GROUPS", "MAIN"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name or email")
	cmd.Flags().StringVarP(&group, "group", "g", "", "only members of this group (id or name)")
	return cmd
}

func entityShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|email|name>",
		Short: "Show one person and their connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			g := s.Graph()
			n, err := resolveEntity(g, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Brand.Fprintln(out, n.Name)
			main := ""
			if n.MainGroupID != nil {
				main = groupNames(g, []string{*n.MainGroupID})
			}
			ui.Table(out, []string{"FIELD", "VALUE"}, [][]string{
				{"id", n.ID},
				{"email", ui.Dash(deref(n.ContactEmail))},
				{"phone", ui.Dash(deref(n.ContactPhone))},
				{"notes", ui.Dash(deref(n.Notes))},
				{"groups", ui.Dash(groupNames(g, n.GroupIDs))},
				{"main group", ui.Dash(main)},
			})

			neighbors := g.Neighbors(n.ID)
			if len(neighbors) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			rows := make([][]string, 0, len(neighbors))
			for _, nb := range neighbors {
				rows = append(rows, []string{nb.Node.Name, ui.Dash(deref(nb.Label)), nb.LinkID})
			}
			ui.Table(out, []string{"CONNECTED TO", "LABEL", "EDGE"}, rows)
			return nil
		},
	}
}

// entityFlags are the form fields shared by add and edit.
type entityFlags struct {
	name, email, phone, notes, main string
	me                              bool
	groups, ungroups                []string
	connect, disconnect             []string
}

func (f *entityFlags) apply(cmd *cobra.Command, g *viewmodel.Graph, d *editor.EntityDraft) error {
	fl := cmd.Flags()
	if fl.Changed("name") {
		d.Name = f.name
	}
	if fl.Changed("email") {
		d.ContactEmail = f.email
	}
	if fl.Changed("phone") {
		d.ContactPhone = f.phone
	}
	if fl.Changed("notes") {
		d.Notes = f.notes
	}
	if fl.Changed("me") {
		d.IsCurrentUser = f.me
	}

	for _, ref := range f.groups {
		gr, err := resolveGroup(g, ref)
		if err != nil {
			return err
		}
		if !slices.Contains(d.GroupsIn, gr.ID) {
			d.ToggleGroup(gr.ID)
		}
	}
	for _, ref := range f.ungroups {
		gr, err := resolveGroup(g, ref)
		if err != nil {
			return err
		}
		if slices.Contains(d.GroupsIn, gr.ID) {
			d.ToggleGroup(gr.ID)
		}
	}
	if fl.Changed("main") {
		if f.main == "" {
			_ = d.SetMainGroup("")
		} else {
			gr, err := resolveGroup(g, f.main)
			if err != nil {
				return err
			}
			if !slices.Contains(d.GroupsIn, gr.ID) {
				d.ToggleGroup(gr.ID)
			}
			if err := d.SetMainGroup(gr.ID); err != nil {
				return err
			}
		}
	}

	for _, ref := range f.connect {
		n, err := resolveEntity(g, ref)
		if err != nil {
			return err
		}
		if slices.Contains(d.ConnectedPeople, n.ID) {
			continue
		}
		if _, err := d.ToggleConnection(n.ID); err != nil {
			return err
		}
	}
	for _, ref := range f.disconnect {
		n, err := resolveEntity(g, ref)
		if err != nil {
			return err
		}
		if slices.Contains(d.ConnectedPeople, n.ID) {
			_, _ = d.ToggleConnection(n.ID)
		}
	}
	return nil
}

func (f *entityFlags) register(cmd *cobra.Command, edit bool) {
	fl := cmd.Flags()
	if edit {
		fl.StringVar(&f.name, "name", "", "new name")
		fl.StringSliceVar(&f.ungroups, "leave", nil, "leave a group (repeatable)")
		fl.StringSliceVar(&f.disconnect, "disconnect", nil, "remove a connection (repeatable)")
	}
	fl.StringVar(&f.email, "email", "", "contact email")
	fl.StringVar(&f.phone, "phone", "", "contact phone")
	fl.StringVar(&f.notes, "notes", "", "free-form notes")
	fl.StringVar(&f.main, "main", "", "main group (joins it if needed)")
	fl.BoolVar(&f.me, "me", false, "mark as the current user")
	fl.StringSliceVarP(&f.groups, "group", "g", nil, "join a group by id or name (repeatable)")
	fl.StringSliceVarP(&f.connect, "connect", "c", nil, "connect to a person by id, email or name (repeatable)")
}

func entityAddCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, s, err := a.controller(ctx)
			if err != nil {
				return err
			}

			ctrl.AddEntity()
			d := ctrl.EntityDraft()
			d.Name = args[0]
			if err := f.apply(cmd, s.Graph(), &d); err != nil {
				return err
			}
			if err := ctrl.SaveEntity(ctx, d); err != nil {
				return err
			}
			_, id, _ := ctrl.Drawer.Target()
			fmt.Fprintf(cmd.OutOrStdout(), "  %s added %s %s\n", ui.StatusIcon(true), naming.Clean(d.Name), ui.Subtle.Sprint(id))
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func entityEditCmd(a *app) *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "edit <id|email|name>",
		Short: "Change a person's details, groups or connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, s, err := a.controller(ctx)
			if err != nil {
				return err
			}
			n, err := resolveEntity(s.Graph(), args[0])
			if err != nil {
				return err
			}

			ctrl.SelectEntity(n.ID)
			if err := ctrl.Edit(); err != nil {
				return err
			}
			d := ctrl.EntityDraft()
			if err := f.apply(cmd, s.Graph(), &d); err != nil {
				return err
			}
			if err := ctrl.SaveEntity(ctx, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s updated %s\n", ui.StatusIcon(true), naming.Clean(d.Name))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func entityRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id|email|name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a person and their connections",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, s, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			n, err := resolveEntity(s.Graph(), args[0])
			if err != nil {
				return err
			}
			ctrl.SelectEntity(n.ID)
			return deleteSelected(cmd, ctrl, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func joinNonEmpty(xs []string) string {
	out := ""
	for _, x := range xs {
		if x == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += x
	}
	return out
}
