// Package list provides the list command.
package list

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mongovault/internal/backup"
	"mongovault/internal/conf"
)

// Command creates and returns the list command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archives in the local backup directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.Backup.Path == "" {
				return &conf.MissingValueError{Var: "BACKUP_PATH"}
			}
			return listArchives(cmd, settings.Backup.Path)
		},
	}
}

func listArchives(cmd *cobra.Command, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading backup directory: %w", err)
	}

	type archive struct {
		name     string
		size     int64
		modified time.Time
	}

	var archives []archive
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), backup.ArchiveExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		archives = append(archives, archive{name: entry.Name(), size: info.Size(), modified: info.ModTime()})
	}

	if len(archives) == 0 {
		cmd.Println("no archives found in", dir)
		return nil
	}

	// Newest first.
	sort.Slice(archives, func(i, j int) bool {
		return archives[i].modified.After(archives[j].modified)
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tAGE")
	now := time.Now()
	for _, a := range archives {
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.name, formatSize(a.size), formatAge(now.Sub(a.modified)))
	}
	return w.Flush()
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
