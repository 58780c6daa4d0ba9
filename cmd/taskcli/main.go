// Command taskcli is a small terminal client for the task API. It drives
// the same endpoints as the web UI and runs the reminder scanner locally
// in watch mode.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/taskminder/taskminder/internal/client"
	"github.com/taskminder/taskminder/internal/dto"
	"github.com/taskminder/taskminder/internal/models"
	"github.com/taskminder/taskminder/internal/reminder"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	server := os.Getenv("TASKMINDER_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}

	api := client.New(server)
	if token, err := os.ReadFile(tokenPath()); err == nil {
		api.SetToken(strings.TrimSpace(string(token)))
	}

	var err error
	switch os.Args[1] {
	case "signup":
		err = runSignup(api, os.Args[2:])
	case "login":
		err = runLogin(api, os.Args[2:])
	case "list":
		err = runList(api)
	case "add":
		err = runAdd(api, os.Args[2:])
	case "edit":
		err = runEdit(api, os.Args[2:])
	case "done":
		err = runDone(api, os.Args[2:])
	case "rm":
		err = runRemove(api, os.Args[2:])
	case "watch":
		err = runWatch(api)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			// The stored session is no longer valid; drop it.
			os.Remove(tokenPath())
			fmt.Fprintln(os.Stderr, "Session expired, please log in again")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: taskcli <command>

Commands:
  signup <username> <email>   register a new account
  login <email>               log in and store the session token
  list                        list your tasks
  add <title> [flags]         create a task
  edit <id> [flags]           update fields of a task
  done <id>                   toggle completion
  rm <id>                     delete a task
  watch                       poll for due reminders and alert`)
}

func runSignup(api *client.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: taskcli signup <username> <email>")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}
	user, err := api.Signup(args[0], args[1], password)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s <%s>\n", user.Username, user.Email)
	return nil
}

func runLogin(api *client.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskcli login <email>")
	}
	password, err := promptPassword()
	if err != nil {
		return err
	}
	resp, err := api.Login(args[0], password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(tokenPath()), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(tokenPath(), []byte(resp.Token), 0o600); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", resp.User.Username)
	return nil
}

func runList(api *client.Client) error {
	tasks, err := api.ListTasks()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks")
		return nil
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %4d  %-8s %s", mark, t.ID, t.Priority, t.Title)
		if t.DueDate != nil {
			line += fmt.Sprintf("  (due %s)", t.DueDate.Local().Format("Jan 2 15:04"))
		}
		fmt.Println(line)
	}
	return nil
}

func runAdd(api *client.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	desc := fs.String("desc", "", "task description")
	priority := fs.String("priority", "", "Low, Medium or High")
	due := fs.String("due", "", "due date, RFC 3339")
	remind := fs.String("remind", "", "reminder time, RFC 3339")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taskcli add <title> [flags]")
	}

	payload := client.TaskPayload{
		Title:       fs.Arg(0),
		Description: *desc,
		Priority:    *priority,
	}
	if *due != "" {
		t, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("invalid -due: %w", err)
		}
		payload.DueDate = &t
	}
	if *remind != "" {
		t, err := time.Parse(time.RFC3339, *remind)
		if err != nil {
			return fmt.Errorf("invalid -remind: %w", err)
		}
		payload.Reminder = &t
	}

	task, err := api.CreateTask(payload)
	if err != nil {
		return err
	}
	fmt.Printf("Created task %d: %s\n", task.ID, task.Title)
	return nil
}

func runEdit(api *client.Client, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.String("title", "", "new title")
	fs.String("desc", "", "new description")
	fs.String("priority", "", "Low, Medium or High")
	fs.String("due", "", `due date, RFC 3339, or "none" to clear`)
	fs.String("remind", "", `reminder time, RFC 3339, or "none" to clear`)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taskcli edit <id> [flags]")
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", fs.Arg(0))
	}

	fields, err := updateFields(fs)
	if err != nil {
		return err
	}

	task, err := api.UpdateTask(id, fields)
	if err != nil {
		return err
	}
	// The reminder may have moved; refresh the local alert bookkeeping.
	newScanner().TaskUpdated(toModel(*task))
	fmt.Printf("Updated task %d: %s\n", task.ID, task.Title)
	return nil
}

// updateFields turns the flags the user actually passed into a partial
// update body. The literal "none" clears an optional timestamp.
func updateFields(fs *flag.FlagSet) (map[string]any, error) {
	fields := make(map[string]any)
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		val := f.Value.String()
		switch f.Name {
		case "title":
			fields["title"] = val
		case "desc":
			fields["description"] = val
		case "priority":
			fields["priority"] = val
		case "due":
			setTimeField(fields, "due_date", "-due", val, &parseErr)
		case "remind":
			setTimeField(fields, "reminder", "-remind", val, &parseErr)
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("nothing to update, pass at least one flag")
	}
	return fields, nil
}

func setTimeField(fields map[string]any, key, flagName, val string, parseErr *error) {
	if val == "none" {
		fields[key] = nil
		return
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		*parseErr = fmt.Errorf("invalid %s: %w", flagName, err)
		return
	}
	fields[key] = t
}

func runDone(api *client.Client, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	task, err := api.ToggleComplete(id)
	if err != nil {
		return err
	}
	state := "pending"
	if task.Completed {
		state = "completed"
		// A completed task must not alert again this session.
		newScanner().TaskCompleted(task.ID)
	}
	fmt.Printf("Task %d is now %s\n", task.ID, state)
	return nil
}

func runRemove(api *client.Client, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := api.DeleteTask(id); err != nil {
		return err
	}
	// Keep the local alert state in sync with the deletion.
	scanner := newScanner()
	scanner.TaskDeleted(id)
	fmt.Printf("Deleted task %d\n", id)
	return nil
}

func runWatch(api *client.Client) error {
	scanner := newScanner()

	fmt.Println("Watching for reminders, Ctrl-C to stop")
	ticker := time.NewTicker(reminder.DefaultScanInterval)
	defer ticker.Stop()

	for {
		if err := watchOnce(api, scanner); err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			// A transient fetch failure should not end the watch.
			fmt.Fprintln(os.Stderr, "Warning:", err)
		}

		<-ticker.C
	}
}

func watchOnce(api *client.Client, scanner *reminder.Scanner) error {
	tasks, err := api.ListTasks()
	if err != nil {
		return err
	}
	scanner.SetTasks(toModels(tasks))
	scanner.Scan()
	return nil
}

func newScanner() *reminder.Scanner {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	state := reminder.NewFileStore(filepath.Join(configDir(), "alerted.json"))
	return reminder.NewScanner(state, printAlert, reminder.DefaultScanInterval, log)
}

func printAlert(task models.Task) {
	fmt.Printf("\a*** Reminder: your task %q is due! (%s)\n",
		task.Title, task.Reminder.Local().Format("Jan 2 15:04"))
}

func toModel(t dto.TaskDTO) models.Task {
	return models.Task{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		Reminder:  t.Reminder,
	}
}

func toModels(tasks []dto.TaskDTO) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = toModel(t)
	}
	return out
}

func parseID(args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one task id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "taskminder")
}

func tokenPath() string {
	return filepath.Join(configDir(), "token")
}
