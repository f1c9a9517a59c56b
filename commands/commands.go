// Package commands contains the commands for the application to be used for request inputs.
//
// Each line typed into the shell is parsed into one of the command types below and validated
// with the shared validator before the shell acts on it. Rows are the 1-based numbers the task
// list is rendered with.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"TaskClient/validation"
)

// ErrEmpty is returned for a blank line.
var ErrEmpty = errors.New("empty command")

// Command is a parsed shell command.
type Command interface {
	Verb() string
}

// LoginCommand represents a command to log in.
type LoginCommand struct {
	Username string `validate:"required,fieldValidator"`
	Password string `validate:"required"`
}

// MockCommand represents a command to switch between the live and the mock service.
type MockCommand struct {
	Mode string `validate:"oneof=on off"`
}

// Enabled reports whether the mock service was requested.
func (c MockCommand) Enabled() bool { return c.Mode == "on" }

// RefreshCommand represents a command to reload the task list.
type RefreshCommand struct{}

// AddTaskCommand represents a command to create a task.
type AddTaskCommand struct {
	Name        string `validate:"required,fieldValidator"`
	Description string
}

// EditTaskCommand represents a command to replace the name and description of a task.
type EditTaskCommand struct {
	Row         int    `validate:"gte=1"`
	Name        string `validate:"required,fieldValidator"`
	Description string
}

// ToggleTaskCommand represents a command to flip the status of a task.
type ToggleTaskCommand struct {
	Row int `validate:"gte=1"`
}

// DeleteTaskCommand represents a command to delete a task.
type DeleteTaskCommand struct {
	Row int `validate:"gte=1"`
}

// LogoutCommand, HelpCommand and QuitCommand take no arguments.
type (
	LogoutCommand struct{}
	HelpCommand   struct{}
	QuitCommand   struct{}
)

func (LoginCommand) Verb() string { return "login" }
func (MockCommand) Verb() string { return "mock" }
func (RefreshCommand) Verb() string { return "refresh" }
func (AddTaskCommand) Verb() string { return "add" }
func (EditTaskCommand) Verb() string { return "edit" }
func (ToggleTaskCommand) Verb() string { return "toggle" }
func (DeleteTaskCommand) Verb() string { return "delete" }
func (LogoutCommand) Verb() string { return "logout" }
func (HelpCommand) Verb() string { return "help" }
func (QuitCommand) Verb() string { return "quit" }

// Usage lists the commands in the order help prints them.
var Usage = []string{
	"login <user> <password>   start a session",
	"mock on|off               use the in-memory service (logged out only)",
	"refresh                   reload the task list",
	"add <name> [| desc]       create a task",
	"edit <n> <name> [| desc]  replace name and description of task n",
	"toggle <n>                mark task n done or pending",
	"delete <n>                delete task n",
	"logout                    end the session",
	"help                      show this list",
	"quit                      leave the shell",
}

// Parse turns a shell line into a validated command.
//
// Returns:
// - Command: one of the command types of this package.
// - error: ErrEmpty, an unknown verb, a usage error or a validation failure.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, ErrEmpty
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var cmd Command
	switch strings.ToLower(verb) {
	case "login":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return nil, usageError("login <user> <password>")
		}
		cmd = LoginCommand{Username: fields[0], Password: fields[1]}
	case "mock":
		cmd = MockCommand{Mode: strings.ToLower(rest)}
	case "refresh", "ls":
		cmd = RefreshCommand{}
	case "add", "new":
		name, desc := splitDescription(rest)
		cmd = AddTaskCommand{Name: name, Description: desc}
	case "edit":
		row, tail, err := parseRow(rest, "edit <n> <name> [| desc]")
		if err != nil {
			return nil, err
		}
		name, desc := splitDescription(tail)
		cmd = EditTaskCommand{Row: row, Name: name, Description: desc}
	case "toggle":
		row, _, err := parseRow(rest, "toggle <n>")
		if err != nil {
			return nil, err
		}
		cmd = ToggleTaskCommand{Row: row}
	case "delete", "rm":
		row, _, err := parseRow(rest, "delete <n>")
		if err != nil {
			return nil, err
		}
		cmd = DeleteTaskCommand{Row: row}
	case "logout":
		cmd = LogoutCommand{}
	case "help", "?":
		cmd = HelpCommand{}
	case "quit", "exit":
		cmd = QuitCommand{}
	default:
		return nil, fmt.Errorf("unknown command %q, type help for a list", verb)
	}

	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// splitDescription splits "name | description" at the first bar.
func splitDescription(s string) (string, string) {
	name, desc, _ := strings.Cut(s, "|")
	return strings.TrimSpace(name), strings.TrimSpace(desc)
}

func parseRow(s, usage string) (int, string, error) {
	first, tail, _ := strings.Cut(s, " ")
	if first == "" {
		return 0, "", usageError(usage)
	}
	row, err := strconv.Atoi(first)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not a task number", first)
	}
	return row, strings.TrimSpace(tail), nil
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
