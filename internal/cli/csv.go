package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kevinxuez/social-map/internal/apiclient"
	"github.com/kevinxuez/social-map/internal/ui"
)

func exportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download groups, people and connections as a zip of CSV files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := a.api().ExportCSV(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Base(name)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s wrote %s (%d bytes)\n", ui.StatusIcon(true), out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: name chosen by the server)")
	return cmd
}

func importCmd(a *app) *cobra.Command {
	var groups, people, connections, archive string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upload CSV files or an export zip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if groups == "" && people == "" && connections == "" && archive == "" {
				return fmt.Errorf("nothing to import: pass --zip or at least one of --groups, --people, --connections")
			}

			var files apiclient.ImportFiles
			var closers []io.Closer
			defer func() {
				for _, c := range closers {
					c.Close()
				}
			}()
			open := func(path string) (io.Reader, error) {
				if path == "" {
					return nil, nil
				}
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				closers = append(closers, f)
				return f, nil
			}

			var err error
			if files.Groups, err = open(groups); err != nil {
				return err
			}
			if files.People, err = open(people); err != nil {
				return err
			}
			if files.Connections, err = open(connections); err != nil {
				return err
			}
			if files.Archive, err = open(archive); err != nil {
				return err
			}

			res, err := a.api().ImportCSV(cmd.Context(), files)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %s import finished\n", ui.StatusIcon(res.Imported))
			ui.Table(out, []string{"KIND", "CREATED"}, [][]string{
				{"groups", strconv.Itoa(res.Groups)},
				{"people", strconv.Itoa(res.People)},
				{"connections", strconv.Itoa(res.Connections)},
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&groups, "groups", "", "groups.csv")
	cmd.Flags().StringVar(&people, "people", "", "people.csv")
	cmd.Flags().StringVar(&connections, "connections", "", "connections.csv")
	cmd.Flags().StringVar(&archive, "zip", "", "zip as written by export")
	return cmd
}
