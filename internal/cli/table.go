package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"azdoctl/internal/connection"
	"azdoctl/internal/vars"
	pkgstrings "azdoctl/pkg/strings"
)

// newTable creates a table writer with the standard azdoctl styling.
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderSummary renders a session summary as a key/value table. Claims may
// be nil when the access token is opaque or unavailable.
func RenderSummary(out io.Writer, summary *connection.SessionSummary, claims *connection.TokenClaims) {
	t := newTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("FIELD"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	t.AppendRow(table.Row{"Status", formatStatus(summary.Status)})
	t.AppendRow(table.Row{"Organization", summary.OrganizationName})
	t.AppendRow(table.Row{"URL", summary.OrganizationURL})
	t.AppendRow(table.Row{"Tenant", summary.TenantID})
	t.AppendRow(table.Row{"Client", summary.ClientID})
	if summary.Project != "" {
		t.AppendRow(table.Row{"Project", summary.Project})
	}
	if summary.ResourceCount > 0 {
		t.AppendRow(table.Row{"Projects visible", fmt.Sprintf("%d", summary.ResourceCount)})
	}
	t.AppendRow(table.Row{"Token expires", FormatExpiryWithDirection(summary.TokenExpiry)})
	if len(summary.Provenance) > 0 {
		t.AppendRow(table.Row{"Identity sources", formatProvenance(summary.Provenance)})
	}
	if claims != nil && len(claims.Roles) > 0 {
		t.AppendRow(table.Row{"Roles", strings.Join(claims.Roles, ", ")})
	}

	t.Render()
}

// formatStatus colors the connection status for terminal display.
func formatStatus(status string) string {
	switch status {
	case connection.StatusConnected:
		return text.FgGreen.Sprint(status)
	case connection.StatusReused:
		return text.FgCyan.Sprint(status)
	default:
		return status
	}
}

// formatProvenance renders the field->source map as a stable one-line list.
func formatProvenance(provenance map[string]connection.Source) string {
	fields := make([]string, 0, len(provenance))
	for field := range provenance {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", field, provenance[field]))
	}
	return strings.Join(parts, ", ")
}

// RenderVariables renders flattened variables as a table, masking secret
// values. Long values are flattened to one line and truncated so a single
// certificate blob cannot wreck the layout.
func RenderVariables(out io.Writer, variables []vars.Variable) {
	t := newTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("VALUE"),
		text.FgHiCyan.Sprint("SECRET"),
	})

	for _, v := range variables {
		value := pkgstrings.Truncate(v.Value, pkgstrings.DefaultValueMaxLen)
		secret := ""
		if v.Secret {
			value = "[REDACTED]"
			secret = text.FgYellow.Sprint("yes")
		}
		t.AppendRow(table.Row{v.Name, value, secret})
	}

	t.Render()
}
