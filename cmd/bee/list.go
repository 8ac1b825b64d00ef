package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/listflags"
	"github.com/beemnet-bee/BeeSmartToDo/internal/ui"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// bee list
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	Long: `List tasks. Open tasks come first, then completed ones; each group is
ordered by --sort. Defaults for the filters and sort order come from the
[view] section of the config; --clear ignores them.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listView listflags.ViewFlags
	listJSON bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listflags.AddViewFlags(listCmd, &listView)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := listView.View(a.cfg.DefaultView())
	if err != nil {
		return err
	}

	all := a.store.Tasks()
	tasks := todo.Project(all, view)

	out := cmd.OutOrStdout()
	if listJSON {
		if tasks == nil {
			tasks = []todo.Task{}
		}
		return encodeJSON(out, tasks)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(out, emptyListMessage(len(all)))
		return nil
	}
	fmt.Fprint(out, formatTaskTable(tasks, a.store.PrefixLengths(), ui.HighlightID, time.Now()))
	return nil
}

func emptyListMessage(total int) string {
	if total == 0 {
		return "No tasks yet. Add one with `bee add` or `bee smart`."
	}
	return fmt.Sprintf("No tasks match the current filters (%d hidden). Use --clear to show all.", total)
}

func formatTaskTable(tasks []todo.Task, prefixLengths map[string]int, highlight func(string, int) string, now time.Time) string {
	builder := ui.NewTableBuilder([]string{"ID", "DONE", "PRI", "CATEGORY", "DUE", "REMINDER", "AGE", "TEXT"}, len(tasks))

	if prefixLengths == nil {
		prefixLengths = todo.NewIDIndex(tasks).PrefixLengths()
	}

	for _, t := range tasks {
		text := ui.TruncateTableCell(t.Text)
		done := "[ ]"
		if t.Completed {
			done = "[x]"
			text = ui.Done(text)
		}
		builder.AddRow([]string{
			highlight(t.ID, prefixLengths[strings.ToLower(t.ID)]),
			done,
			ui.Priority(string(t.Priority)),
			string(t.Category),
			ui.FormatDue(t, now),
			ui.FormatReminder(t),
			ui.Muted(ui.FormatTimeAgo(t.CreatedAt, now)),
			text,
		})
	}

	return builder.String()
}
