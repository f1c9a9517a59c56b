// Package ui is the terminal presentation of the task client: a renderer that prints controller
// snapshots and a line-oriented shell that turns typed commands into controller calls.
package ui

import (
	"fmt"
	"io"
	"strings"

	"TaskClient/controller"
	"TaskClient/models"
)

// Theme selects how snapshots are printed.
type Theme string

const (
	ThemePlain Theme = "plain"
	ThemeColor Theme = "color"
)

// ParseTheme accepts "plain" or "color" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemePlain:
		return ThemePlain, nil
	case ThemeColor:
		return ThemeColor, nil
	}
	return "", fmt.Errorf("unknown theme %q (want plain or color)", s)
}

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// Renderer prints snapshots to a writer.
type Renderer struct {
	out   io.Writer
	theme Theme
}

// NewRenderer returns a renderer writing to out.
func NewRenderer(out io.Writer, theme Theme) *Renderer {
	if theme != ThemeColor {
		theme = ThemePlain
	}
	return &Renderer{out: out, theme: theme}
}

func (r *Renderer) paint(code, s string) string {
	if r.theme != ThemeColor {
		return s
	}
	return code + s + ansiReset
}

// Render prints the login screen or the task list, depending on the snapshot state.
func (r *Renderer) Render(s controller.Snapshot) {
	var b strings.Builder
	if s.State == controller.LoggedIn {
		r.tasks(&b, s)
	} else {
		r.login(&b, s)
	}
	if s.Loading {
		b.WriteString(r.paint(ansiDim, "loading...") + "\n")
	}
	if s.Notice != "" {
		b.WriteString(r.paint(ansiRed, "! "+s.Notice) + "\n")
	}
	io.WriteString(r.out, b.String())
}

func (r *Renderer) login(b *strings.Builder, s controller.Snapshot) {
	b.WriteString(r.paint(ansiBold, "== Login ==") + " " + serviceLabel(s) + "\n")
	if s.LoginForm.Username != "" {
		fmt.Fprintf(b, "user: %s\n", s.LoginForm.Username)
	}
	if s.LoginError != "" {
		b.WriteString(r.paint(ansiRed, "login failed: "+s.LoginError) + "\n")
	}
	b.WriteString("type: login <user> <password>\n")
}

func (r *Renderer) tasks(b *strings.Builder, s controller.Snapshot) {
	header := "== Tasks =="
	if s.User != nil {
		header = fmt.Sprintf("== Tasks of %s (%s) ==", s.User.Username, s.User.Role)
	}
	b.WriteString(r.paint(ansiBold, header) + " " + serviceLabel(s) + "\n")
	fmt.Fprintf(b, "total %d | pending %d | done %d\n", s.Stats.Total, s.Stats.Pending, s.Stats.Done)

	if len(s.Tasks) == 0 {
		b.WriteString(r.paint(ansiDim, "no tasks yet, try: add <name> | <description>") + "\n")
	}
	for i, t := range s.Tasks {
		b.WriteString(r.row(i+1, t) + "\n")
	}

	if s.ShowForm {
		title := "new task"
		if s.Editing() {
			title = "editing task " + s.EditingID.String()
		}
		fmt.Fprintf(b, "-- %s: %q", title, s.Draft.Name)
		if s.Draft.Description != "" {
			fmt.Fprintf(b, " | %q", s.Draft.Description)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) row(n int, t models.Task) string {
	mark := r.paint(ansiYellow, "[ ]")
	name := t.Name
	if t.Status == models.Done {
		mark = r.paint(ansiGreen, "[x]")
		name = r.paint(ansiDim, name)
	}
	line := fmt.Sprintf("%3d. %s %s", n, mark, name)
	if t.Description != "" {
		line += " - " + t.Description
	}
	return line
}

func serviceLabel(s controller.Snapshot) string {
	if s.UsingMock {
		return "[mock]"
	}
	return "[live]"
}
