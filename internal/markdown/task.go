package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// TaskDocument describes a task as a markdown document.
func TaskDocument(task todo.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(task.Text))

	status := "open"
	if task.Completed {
		status = "done"
	}
	field := func(name, value string) {
		fmt.Fprintf(&b, "- **%s:** %s\n", name, value)
	}
	field("ID", "`"+task.ID+"`")
	field("Status", status)
	field("Category", string(task.Category))
	field("Priority", string(task.Priority))
	field("Created", task.CreatedAt.In(now.Location()).Format("2006-01-02 15:04"))

	if task.DueDate != "" {
		due := task.DueDate
		if todo.IsOverdue(task, now) {
			due += " **(overdue)**"
		}
		field("Due", due)
	}
	if reminder, ok := task.Reminder(now.Location()); ok {
		field("Reminder", reminder.Format("2006-01-02 15:04"))
	}
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`)

func escape(value string) string {
	return escaper.Replace(value)
}
