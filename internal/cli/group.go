package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/editor"
	"github.com/kevinxuez/social-map/internal/naming"
	"github.com/kevinxuez/social-map/internal/socialgraph"
	"github.com/kevinxuez/social-map/internal/ui"
	"github.com/kevinxuez/social-map/internal/viewmodel"
)

func groupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "List and edit groups",
	}
	cmd.AddCommand(groupListCmd(a), groupAddCmd(a), groupEditCmd(a), groupRemoveCmd(a))
	return cmd
}

func groupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List groups",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.api().ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				ui.Subtle.Fprintln(out, "  no groups yet")
				return nil
			}
			names := make(map[string]string, len(groups))
			for _, g := range groups {
				names[g.ID] = g.Name
			}
			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				parent := ""
				if g.ParentGroupID != nil {
					parent = names[*g.ParentGroupID]
				}
				color := socialgraph.Group{Name: g.Name, Color: g.ColorHex}.DisplayColor()
				rows = append(rows, []string{g.ID, g.Name, color, ui.Dash(parent), ui.Dash(deref(g.Description))})
			}
			ui.Table(out, []string{"ID", "NAME", "COLOR", "PARENT", "DESCRIPTION"}, rows)
			return nil
		},
	}
}

type groupFlags struct {
	name, description, color, parent string
}

func (f *groupFlags) apply(cmd *cobra.Command, g *viewmodel.Graph, d *editor.GroupDraft) error {
	fl := cmd.Flags()
	if fl.Changed("name") {
		d.Name = f.name
	}
	if fl.Changed("description") {
		d.Description = f.description
	}
	if fl.Changed("color") {
		d.ColorHex = f.color
	}
	if fl.Changed("parent") {
		d.ParentGroupID = ""
		if f.parent != "" {
			p, err := resolveGroup(g, f.parent)
			if err != nil {
				return err
			}
			d.ParentGroupID = p.ID
		}
	}
	return nil
}

func (f *groupFlags) register(cmd *cobra.Command, edit bool) {
	fl := cmd.Flags()
	if edit {
		fl.StringVar(&f.name, "name", "", "new name")
	}
	fl.StringVar(&f.description, "description", "", "description")
	fl.StringVar(&f.color, "color", "", "display color, e.g. #ff8a65")
	fl.StringVar(&f.parent, "parent", "", "parent group id or name (empty clears)")
}

func groupAddCmd(a *app) *cobra.Command {
	var f groupFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, s, err := a.controller(ctx)
			if err != nil {
				return err
			}
			ctrl.AddGroup()
			d := ctrl.GroupDraft()
			d.Name = args[0]
			if err := f.apply(cmd, s.Graph(), &d); err != nil {
				return err
			}
			if err := ctrl.SaveGroup(ctx, d); err != nil {
				return err
			}
			_, id, _ := ctrl.Drawer.Target()
			fmt.Fprintf(cmd.OutOrStdout(), "  %s added group %s %s\n", ui.StatusIcon(true), naming.Clean(d.Name), ui.Subtle.Sprint(id))
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func groupEditCmd(a *app) *cobra.Command {
	var f groupFlags
	cmd := &cobra.Command{
		Use:   "edit <id|name>",
		Short: "Rename, recolor or reparent a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, s, err := a.controller(ctx)
			if err != nil {
				return err
			}
			gr, err := resolveGroup(s.Graph(), args[0])
			if err != nil {
				return err
			}
			ctrl.SelectGroup(gr.ID)
			if err := ctrl.Edit(); err != nil {
				return err
			}
			d := ctrl.GroupDraft()
			if err := f.apply(cmd, s.Graph(), &d); err != nil {
				return err
			}
			if err := ctrl.SaveGroup(ctx, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s updated group %s\n", ui.StatusIcon(true), naming.Clean(d.Name))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func groupRemoveCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a group; members keep their other groups",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, s, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			gr, err := resolveGroup(s.Graph(), args[0])
			if err != nil {
				return err
			}
			ctrl.SelectGroup(gr.ID)
			return deleteSelected(cmd, ctrl, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
