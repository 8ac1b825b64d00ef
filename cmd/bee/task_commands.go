package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/beemnet-bee/BeeSmartToDo/internal/editor"
	"github.com/beemnet-bee/BeeSmartToDo/internal/markdown"
	"github.com/beemnet-bee/BeeSmartToDo/internal/ui"
	"github.com/beemnet-bee/BeeSmartToDo/internal/validation"
	"github.com/beemnet-bee/BeeSmartToDo/parse"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

// bee add
var addCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var (
	addCategory string
	addPriority string
	addDue      string
	addRemind   string
)

// bee smart
var smartCmd = &cobra.Command{
	Use:   "smart [text]...",
	Short: "Add tasks from free-form text, one per line",
	Long: `Add tasks from free-form text, one per line.

The text is taken from the arguments, or read from stdin when no
arguments are given or the only argument is "-". Each line becomes a task;
category, priority, due date and reminder are picked out of the words.`,
	RunE: runSmart,
}

var smartModel bool

// bee toggle
var toggleCmd = &cobra.Command{
	Use:     "toggle <id>...",
	Short:   "Flip one or more tasks between open and completed",
	Aliases: []string{"done"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runToggle,
}

// bee edit
var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Long: `Edit a task.

With no field flags and an interactive terminal, opens $EDITOR on a TOML
representation of the task. Pass an empty --due or --remind to clear it.`,
	Aliases: []string{"update"},
	Args:    cobra.ExactArgs(1),
	RunE:    runEdit,
}

var (
	editText     string
	editCategory string
	editPriority string
	editDue      string
	editRemind   string
	editEditor   bool
)

// bee delete
var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more tasks",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

// bee show
var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var showJSON bool

var errNothingToUpdate = errors.New("nothing to update: pass a field flag or run interactively")

func init() {
	rootCmd.AddCommand(addCmd, smartCmd, toggleCmd, editCmd, deleteCmd, showCmd)

	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category ("+validation.FormatValidValues(todo.ValidCategories())+")")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority ("+validation.FormatValidValues(todo.ValidPriorities())+")")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addRemind, "remind", "", "Reminder (YYYY-MM-DDTHH:MM)")

	smartCmd.Flags().BoolVar(&smartModel, "model", false, "Use the configured Ollama model instead of the rule-based parser")

	editCmd.Flags().StringVar(&editText, "text", "", "New text")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD, empty to clear)")
	editCmd.Flags().StringVar(&editRemind, "remind", "", "New reminder (YYYY-MM-DDTHH:MM, empty to clear)")
	editCmd.Flags().BoolVarP(&editEditor, "edit", "e", false, "Open $EDITOR even when field flags are given")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	addTaskFieldFlagAliases(addCmd, editCmd)
}

func parseCategoryFlag(value string) (todo.Category, error) {
	category, ok := todo.ParseCategory(value)
	if !ok {
		return "", validation.FormatInvalidValueError(todo.ErrInvalidCategory, todo.Category(value), todo.ValidCategories())
	}
	return category, nil
}

func parsePriorityFlag(value string) (todo.Priority, error) {
	priority, ok := todo.ParsePriority(value)
	if !ok {
		return "", validation.FormatInvalidValueError(todo.ErrInvalidPriority, todo.Priority(value), todo.ValidPriorities())
	}
	return priority, nil
}

func printTaskLine(w io.Writer, verb string, task todo.Task) {
	fmt.Fprintf(w, "%s %s %s\n", verb, task.ID, task.Text)
}

func runAdd(cmd *cobra.Command, args []string) error {
	draft := todo.Draft{
		Text:         strings.Join(args, " "),
		DueDate:      addDue,
		ReminderDate: addRemind,
	}
	if addCategory != "" {
		category, err := parseCategoryFlag(addCategory)
		if err != nil {
			return err
		}
		draft.Category = category
	}
	if addPriority != "" {
		priority, err := parsePriorityFlag(addPriority)
		if err != nil {
			return err
		}
		draft.Priority = priority
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.store.Add(draft)
	if err != nil {
		return err
	}
	printTaskLine(cmd.OutOrStdout(), "Added", task)
	return nil
}

func readSmartInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read tasks from stdin: %w", err)
	}
	return string(input), nil
}

func runSmart(cmd *cobra.Command, args []string) error {
	text, err := readSmartInput(cmd, args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mode := a.cfg.Parser.Mode
	if smartModel {
		mode = parse.ModeModel
	}
	parser, err := parse.New(parse.Options{
		Mode:   mode,
		Model:  a.cfg.Parser.Model,
		Host:   a.cfg.Parser.Host,
		Logger: newLogger(cmd, "parse: "),
	})
	if err != nil {
		return err
	}

	drafts, err := parser.Parse(cmd.Context(), text)
	if err != nil {
		return err
	}

	tasks, addErr := a.store.AddMany(drafts)
	out := cmd.OutOrStdout()
	for _, task := range tasks {
		printTaskLine(out, "Added", task)
	}
	if addErr != nil && len(tasks) == 0 {
		return addErr
	}
	if addErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped invalid tasks: %v\n", addErr)
	}
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.resolveIDs(args)
	if err != nil {
		return err
	}
	for _, id := range ids {
		task, err := a.store.Toggle(id)
		if err != nil {
			return err
		}
		verb := "Reopened"
		if task.Completed {
			verb = "Completed"
		}
		printTaskLine(cmd.OutOrStdout(), verb, task)
	}
	return nil
}

func editOptionsFromFlags(cmd *cobra.Command) (todo.UpdateOptions, error) {
	var opts todo.UpdateOptions
	flags := cmd.Flags()
	if flags.Changed("text") {
		opts.Text = &editText
	}
	if flags.Changed("category") {
		category, err := parseCategoryFlag(editCategory)
		if err != nil {
			return opts, err
		}
		opts.Category = &category
	}
	if flags.Changed("priority") {
		priority, err := parsePriorityFlag(editPriority)
		if err != nil {
			return opts, err
		}
		opts.Priority = &priority
	}
	if flags.Changed("due") {
		due := strings.TrimSpace(editDue)
		opts.DueDate = &due
	}
	if flags.Changed("remind") {
		reminder := strings.TrimSpace(editRemind)
		opts.ReminderDate = &reminder
	}
	return opts, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.store.Resolve(args[0])
	if err != nil {
		return err
	}

	var opts todo.UpdateOptions
	hasFieldFlags := hasChangedFlags(cmd, "text", "category", "priority", "due", "remind")
	switch {
	case editEditor || (!hasFieldFlags && editor.IsInteractive()):
		task, err := a.store.Get(id)
		if err != nil {
			return err
		}
		parsed, err := editor.EditTask(task)
		if err != nil {
			return err
		}
		opts = parsed.ToUpdateOptions()
	case hasFieldFlags:
		opts, err = editOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
	default:
		return errNothingToUpdate
	}

	task, err := a.store.Update(id, opts)
	if err != nil {
		return err
	}
	printTaskLine(cmd.OutOrStdout(), "Updated", task)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.resolveIDs(args)
	if err != nil {
		return err
	}
	for _, id := range ids {
		task, err := a.store.Get(id)
		if err != nil {
			return err
		}
		if err := a.store.Delete(id); err != nil {
			return err
		}
		printTaskLine(cmd.OutOrStdout(), "Deleted", task)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.resolveIDs(args)
	if err != nil {
		return err
	}
	tasks := make([]todo.Task, 0, len(ids))
	for _, id := range ids {
		task, err := a.store.Get(id)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return encodeJSON(out, tasks)
	}

	now := time.Now()
	for i, task := range tasks {
		if i > 0 {
			fmt.Fprintln(out, "---")
		}
		fmt.Fprintln(out, markdown.Render(outputWidth(), ui.ColorEnabled(), markdown.TaskDocument(task, now)))
	}
	return nil
}
