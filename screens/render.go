// Package screens holds the view models behind each shell page and renders them
// as text.
package screens

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-auth-shell/users"
)

const (
	LoadingText      = "Loading..."
	AccessDeniedText = "Access Denied: you don't have permission to access this page."
)

func RenderLoading(w io.Writer) error {
	_, err := fmt.Fprintln(w, paint(Gray, LoadingText))
	return err
}

func RenderAccessDenied(w io.Writer) error {
	_, err := fmt.Fprintln(w, paint(Red, AccessDeniedText))
	return err
}

// RenderError prints message as an inline error; empty messages print nothing.
func RenderError(w io.Writer, message string) error {
	if message == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, paint(Red, "Error: "+message))
	return err
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, paint(Blue, title))
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderFields prints a two-column key/value table with keys sorted.
func renderFields(w io.Writer, fields map[string]any) error {
	tw := newTable(w)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(tw, "%s\t%s\n", label(key), formatValue(fields[key]))
	}
	return tw.Flush()
}

// renderUsers prints users as a table.
func renderUsers(w io.Writer, list []users.User) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No users found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return tw.Flush()
}

// label turns snake_case and camelCase keys into words.
func label(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_':
			b.WriteByte(' ')
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
