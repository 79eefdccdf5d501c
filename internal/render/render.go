// Package render prints bugs for terminal users.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/spec-kit/bug-tracker/internal/domain"
	"github.com/spec-kit/bug-tracker/pkg/client"
)

const dateLayout = "2006-01-02"

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	red    = color.New(color.FgHiRed).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
)

// SeverityLabel returns the uppercased severity, MEDIUM when unset.
func SeverityLabel(severity domain.BugSeverity) string {
	if severity == "" {
		return strings.ToUpper(string(domain.BugSeverityMedium))
	}
	return strings.ToUpper(string(severity))
}

// SeverityColor colors a label by severity: high red, medium yellow, low green.
func SeverityColor(severity domain.BugSeverity, label string) string {
	switch severity {
	case domain.BugSeverityHigh:
		return red(label)
	case domain.BugSeverityMedium:
		return yellow(label)
	case domain.BugSeverityLow:
		return green(label)
	default:
		return label
	}
}

// StatusLabel returns the display name of a status. Unknown values pass through.
func StatusLabel(status domain.BugStatus) string {
	switch status {
	case domain.BugStatusOpen:
		return "Open"
	case domain.BugStatusInProgress:
		return "In Progress"
	case domain.BugStatusClosed:
		return "Closed"
	default:
		return string(status)
	}
}

func severityCell(severity string) string {
	s := domain.BugSeverity(severity)
	return SeverityColor(s, SeverityLabel(s))
}

func priorityOf(bug *client.Bug) int {
	if bug.Priority == 0 {
		return domain.DefaultBugPriority
	}
	return bug.Priority
}

// BugCard prints a single bug.
func BugCard(w io.Writer, bug *client.Bug) {
	if bug == nil {
		fmt.Fprintln(w, "No bug data")
		return
	}

	title := bug.Title
	if title == "" {
		title = "Untitled"
	}
	description := bug.Description
	if description == "" {
		description = "No description provided"
	}

	fmt.Fprintln(w, bold(title))
	fmt.Fprintln(w, description)
	fmt.Fprintf(w, "%s  Priority: %d  %s\n",
		severityCell(bug.Severity),
		priorityOf(bug),
		StatusLabel(domain.BugStatus(bug.Status)))
	if !bug.CreatedAt.IsZero() {
		fmt.Fprintln(w, faint("Created: "+bug.CreatedAt.Local().Format(dateLayout)))
	}
	if bug.ID != "" {
		fmt.Fprintln(w, faint("ID: "+bug.ID))
	}
}

// BugList prints a heading and a table of bugs, or "No bugs found".
func BugList(w io.Writer, bugs []client.Bug) error {
	fmt.Fprintf(w, "Bugs (%d)\n", len(bugs))
	if len(bugs) == 0 {
		fmt.Fprintln(w, "No bugs found")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header([]string{"ID", "Title", "Severity", "Priority", "Status", "Created"})

	for i := range bugs {
		bug := &bugs[i]
		title := bug.Title
		if title == "" {
			title = "Untitled"
		}
		created := ""
		if !bug.CreatedAt.IsZero() {
			created = bug.CreatedAt.Local().Format(dateLayout)
		}
		if err := table.Append([]string{
			bug.ID,
			title,
			severityCell(bug.Severity),
			strconv.Itoa(priorityOf(bug)),
			StatusLabel(domain.BugStatus(bug.Status)),
			created,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
