// Package output provides styled terminal output helpers (success, error,
// sync status formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/easygest/bp/internal/models"
	"github.com/easygest/bp/internal/sync"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))

	statusStyles = map[models.SyncStatus]lipgloss.Style{
		models.SyncPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.SyncSynced:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.SyncConflict: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// Title prints a bold section title
func Title(format string, args ...interface{}) {
	fmt.Println(titleStyle.Render(fmt.Sprintf(format, args...)))
}

// JSON outputs data as indented JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatSyncStatus formats a record's sync status with color
func FormatSyncStatus(s models.SyncStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatOnline renders the connectivity indicator
func FormatOnline(online bool) string {
	if online {
		return onlineStyle.Render("online")
	}
	return subtleStyle.Render("offline")
}

// FormatLastSync renders the checkpoint as a relative age, or "never".
func FormatLastSync(t *time.Time) string {
	if t == nil {
		return subtleStyle.Render("never")
	}
	age := time.Since(*t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return fmt.Sprintf("%dh%02dm ago", int(age.Hours()), int(age.Minutes())%60)
}

// PrintStatus renders one engine status snapshot.
func PrintStatus(st sync.Status) {
	Title("Synchronization")
	fmt.Printf("  connection:  %s\n", FormatOnline(st.IsOnline))
	fmt.Printf("  pending:     %d\n", st.PendingCount)
	fmt.Printf("  last sync:   %s\n", FormatLastSync(st.LastSync))
	if st.IsSyncing {
		fmt.Printf("  %s\n", warningStyle.Render("sync in progress"))
	}
}

// PrintResult renders the outcome of a sync round.
func PrintResult(res sync.Result) {
	if res.Success {
		Success("%s", res.Message)
		return
	}
	Error("%s", res.Message)
	for _, msg := range res.Errors {
		fmt.Printf("  %s\n", errorStyle.Render(msg))
	}
}
