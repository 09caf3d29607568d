// Package csvio reads and writes the three CSV files used to move a graph
// in and out: groups.csv, people.csv and connections.csv.
package csvio

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kevinxuez/social-map/internal/naming"
)

var (
	GroupHeader      = []string{"name", "description", "color_hex", "parent_group_name"}
	PersonHeader     = []string{"name", "contact_email", "contact_phone", "notes", "main_group_name", "groups"}
	ConnectionHeader = []string{"a_identifier", "b_identifier", "label"}
)

// GroupSeparator joins group names in the people.csv groups column.
const GroupSeparator = ";"

type GroupRow struct {
	Name        string
	Description string
	ColorHex    string
	ParentName  string
}

type PersonRow struct {
	Name          string
	ContactEmail  string
	ContactPhone  string
	Notes         string
	MainGroupName string
	Groups        []string
}

// ConnectionRow references people by email or name.
type ConnectionRow struct {
	A     string
	B     string
	Label string
}

type Dataset struct {
	Groups      []GroupRow
	People      []PersonRow
	Connections []ConnectionRow
}

// WriteZip writes the dataset as a zip holding the three CSV files.
func WriteZip(w io.Writer, d Dataset) error {
	zw := zip.NewWriter(w)

	groups := make([][]string, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, []string{g.Name, g.Description, g.ColorHex, g.ParentName})
	}
	if err := writeCSV(zw, "groups.csv", GroupHeader, groups); err != nil {
		return err
	}

	people := make([][]string, 0, len(d.People))
	for _, p := range d.People {
		people = append(people, []string{p.Name, p.ContactEmail, p.ContactPhone, p.Notes, p.MainGroupName, strings.Join(p.Groups, GroupSeparator)})
	}
	if err := writeCSV(zw, "people.csv", PersonHeader, people); err != nil {
		return err
	}

	conns := make([][]string, 0, len(d.Connections))
	for _, c := range d.Connections {
		conns = append(conns, []string{c.A, c.B, c.Label})
	}
	if err := writeCSV(zw, "connections.csv", ConnectionHeader, conns); err != nil {
		return err
	}

	return zw.Close()
}

func writeCSV(zw *zip.Writer, name string, header []string, rows [][]string) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadZip reads a zip produced by WriteZip. Missing files read as empty.
func ReadZip(r io.ReaderAt, size int64) (Dataset, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Dataset{}, err
	}
	var d Dataset
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return Dataset{}, err
		}
		switch f.Name {
		case "groups.csv":
			d.Groups, err = ReadGroups(rc)
		case "people.csv":
			d.People, err = ReadPeople(rc)
		case "connections.csv":
			d.Connections, err = ReadConnections(rc)
		}
		rc.Close()
		if err != nil {
			return Dataset{}, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return d, nil
}

func ReadGroups(r io.Reader) ([]GroupRow, error) {
	var out []GroupRow
	err := readRows(r, "name", func(get func(string) string) {
		name := naming.Clean(get("name"))
		if name == "" {
			return
		}
		out = append(out, GroupRow{
			Name:        name,
			Description: strings.TrimSpace(get("description")),
			ColorHex:    strings.TrimSpace(get("color_hex")),
			ParentName:  naming.Clean(get("parent_group_name")),
		})
	})
	return out, err
}

// ReadPeople skips rows with neither a name nor an email.
func ReadPeople(r io.Reader) ([]PersonRow, error) {
	var out []PersonRow
	err := readRows(r, "", func(get func(string) string) {
		p := PersonRow{
			Name:          naming.Clean(get("name")),
			ContactEmail:  strings.TrimSpace(get("contact_email")),
			ContactPhone:  strings.TrimSpace(get("contact_phone")),
			Notes:         strings.TrimSpace(get("notes")),
			MainGroupName: naming.Clean(get("main_group_name")),
		}
		if p.Name == "" && p.ContactEmail == "" {
			return
		}
		for _, g := range strings.Split(get("groups"), GroupSeparator) {
			if g = naming.Clean(g); g != "" {
				p.Groups = append(p.Groups, g)
			}
		}
		out = append(out, p)
	})
	return out, err
}

func ReadConnections(r io.Reader) ([]ConnectionRow, error) {
	var out []ConnectionRow
	err := readRows(r, "", func(get func(string) string) {
		c := ConnectionRow{
			A:     strings.TrimSpace(get("a_identifier")),
			B:     strings.TrimSpace(get("b_identifier")),
			Label: strings.TrimSpace(get("label")),
		}
		if c.A == "" || c.B == "" {
			return
		}
		out = append(out, c)
	})
	return out, err
}

// readRows calls fn with a column getter for each data row. Columns are
// matched by header name, so their order is free. required names a column
// that must be present in the header.
func readRows(r io.Reader, required string, fn func(get func(string) string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	if required != "" {
		if _, ok := cols[required]; !ok {
			return fmt.Errorf("missing %q column", required)
		}
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		})
	}
}
