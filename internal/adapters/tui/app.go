// Package tui is the terminal rendition of the board: sign in, then move,
// create and delete tasks from three lanes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/domain/entities"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/ports"
)

type screen int

const (
	screenLogin screen = iota
	screenBoard
	screenNewTask
	screenConfirmDelete
)

var filters = []string{"all", "high", "medium", "low"}

type loggedInMsg struct{ err error }

type boardLoadedMsg struct{ res services.LoadResult }

type mutatedMsg struct {
	notice string
	err    error
}

type loggedOutMsg struct{ err error }

// App is the bubbletea model of the board.
type App struct {
	ctx     context.Context
	session *services.Session
	boards  *services.BoardService
	board   *services.Board
	logger  *logger.Logger

	styles *Styles
	keys   KeyMap

	screen screen
	view   ports.BoardView
	lane   int
	row    int
	filter int

	inputs   []textinput.Model
	focusIdx int
	deleteID int64

	notice string
	err    string
	width  int
	height int
}

// NewApp creates the model. A session that already holds a user skips the
// sign-in form.
func NewApp(ctx context.Context, session *services.Session, boards *services.BoardService, logger *logger.Logger) *App {
	a := &App{
		ctx:     ctx,
		session: session,
		boards:  boards,
		logger:  logger.WithComponent("tui"),
		styles:  NewStyles(),
		keys:    DefaultKeyMap(),
	}
	if _, ok := session.User(); ok {
		a.screen = screenBoard
		a.board = boards.NewBoard()
	} else {
		a.startLogin()
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.screen == screenBoard {
		return a.load
	}
	return textinput.Blink
}

func (a *App) load() tea.Msg {
	return boardLoadedMsg{res: a.board.Load(a.session.Context(a.ctx))}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loggedInMsg:
		if msg.err != nil {
			a.err = msg.err.Error()
			return a, nil
		}
		a.err = ""
		a.screen = screenBoard
		a.board = a.boards.NewBoard()
		return a, a.load

	case boardLoadedMsg:
		if msg.res.Fallback {
			a.err = "Could not load tasks: " + msg.res.Err.Error()
		}
		a.refresh()
		return a, nil

	case mutatedMsg:
		a.err, a.notice = "", msg.notice
		if msg.err != nil {
			a.notice = ""
			a.err = msg.err.Error()
		}
		a.refresh()
		return a, nil

	case loggedOutMsg:
		if msg.err != nil {
			a.logger.Warnw("Sign out failed", "error", msg.err)
		}
		a.board = nil
		a.view = ports.BoardView{}
		a.startLogin()
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin, screenNewTask:
			return a.updateForm(msg)
		case screenConfirmDelete:
			return a.updateConfirmDelete(msg)
		default:
			return a.updateBoard(msg)
		}
	}

	return a, nil
}

func (a *App) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Left):
		if a.lane > 0 {
			a.lane--
			a.clampRow()
		}

	case key.Matches(msg, a.keys.Right):
		if a.lane < len(entities.Lanes)-1 {
			a.lane++
			a.clampRow()
		}

	case key.Matches(msg, a.keys.Up):
		if a.row > 0 {
			a.row--
		}

	case key.Matches(msg, a.keys.Down):
		a.row++
		a.clampRow()

	case key.Matches(msg, a.keys.MoveBack):
		return a, a.move(-1)

	case key.Matches(msg, a.keys.MoveNext):
		return a, a.move(1)

	case key.Matches(msg, a.keys.Filter):
		a.filter = (a.filter + 1) % len(filters)
		a.refresh()

	case key.Matches(msg, a.keys.Reload):
		a.notice = ""
		return a, a.load

	case key.Matches(msg, a.keys.New):
		if !a.view.CanCreate {
			a.err = "Guests cannot create tasks"
			return a, nil
		}
		a.startNewTask()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Delete):
		task, ok := a.selected()
		if !ok {
			return a, nil
		}
		if !task.Access.CanMutate() {
			a.err = "Only the owner can delete this task"
			return a, nil
		}
		a.deleteID = task.ID
		a.screen = screenConfirmDelete

	case key.Matches(msg, a.keys.Logout):
		session := a.session
		ctx := a.ctx
		return a, func() tea.Msg { return loggedOutMsg{err: session.Teardown(ctx)} }
	}

	return a, nil
}

func (a *App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.screen = screenBoard
	if !key.Matches(msg, a.keys.Confirm) {
		return a, nil
	}

	id := a.deleteID
	viewer, _ := a.session.Viewer()
	ctx := a.session.Context(a.ctx)
	return a, func() tea.Msg {
		if err := a.boards.DeleteTask(ctx, viewer, a.board, id); err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{notice: fmt.Sprintf("Task #%d deleted", id)}
	}
}

// move shifts the selected task one lane in direction dir.
func (a *App) move(dir int) tea.Cmd {
	task, ok := a.selected()
	if !ok {
		return nil
	}
	if !task.Access.CanMutate() {
		a.err = "Only the owner can move this task"
		return nil
	}

	target := laneIndex(task.Status) + dir
	if target < 0 || target >= len(entities.Lanes) {
		return nil
	}
	status := entities.Lanes[target]

	viewer, _ := a.session.Viewer()
	ctx := a.session.Context(a.ctx)
	return func() tea.Msg {
		moved, err := a.boards.ChangeStatus(ctx, viewer, a.board, task.ID, status)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{notice: fmt.Sprintf("%q moved to %s", moved.Title, services.LaneTitle(moved.Status))}
	}
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc && a.screen == screenNewTask:
		a.screen = screenBoard
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		dir := 1
		if msg.String() == "shift+tab" {
			dir = -1
		}
		a.focus((a.focusIdx + dir + len(a.inputs)) % len(a.inputs))
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		if a.focusIdx < len(a.inputs)-1 {
			a.focus(a.focusIdx + 1)
			return a, nil
		}
		if a.screen == screenLogin {
			return a, a.submitLogin()
		}
		return a, a.submitNewTask()
	}

	var cmd tea.Cmd
	a.inputs[a.focusIdx], cmd = a.inputs[a.focusIdx].Update(msg)
	return a, cmd
}

func (a *App) submitLogin() tea.Cmd {
	req := ports.LoginRequest{
		Email:    strings.TrimSpace(a.inputs[0].Value()),
		Password: a.inputs[1].Value(),
	}
	if req.Email == "" || req.Password == "" {
		a.err = "Email and password are required"
		return nil
	}

	session := a.session
	ctx := a.ctx
	return func() tea.Msg {
		_, err := session.Login(ctx, req)
		return loggedInMsg{err: err}
	}
}

func (a *App) submitNewTask() tea.Cmd {
	task := entities.NewTask{
		Title:       strings.TrimSpace(a.inputs[0].Value()),
		Description: strings.TrimSpace(a.inputs[1].Value()),
		Assignee:    strings.TrimSpace(a.inputs[2].Value()),
		Priority:    entities.Priority(strings.ToLower(strings.TrimSpace(a.inputs[3].Value()))),
	}
	if task.Title == "" || task.Description == "" || task.Assignee == "" {
		a.err = "Title, description and assignee are required"
		return nil
	}
	if task.Priority != "" && !task.Priority.IsValid() {
		a.err = "Priority must be high, medium or low"
		return nil
	}

	a.screen = screenBoard
	a.err = ""
	viewer, _ := a.session.Viewer()
	ctx := a.session.Context(a.ctx)
	return func() tea.Msg {
		created, err := a.boards.CreateTask(ctx, viewer, a.board, task)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{notice: fmt.Sprintf("Task #%d created", created.ID)}
	}
}

func (a *App) startLogin() {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email     "

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	a.screen = screenLogin
	a.inputs = []textinput.Model{email, password}
	a.focus(0)
}

func (a *App) startNewTask() {
	a.inputs = make([]textinput.Model, 4)
	for i, prompt := range []string{"Title       ", "Description ", "Assignee    ", "Priority    "} {
		in := textinput.New()
		in.Prompt = prompt
		in.CharLimit = 200
		a.inputs[i] = in
	}
	if user, ok := a.session.User(); ok {
		a.inputs[2].SetValue(user.Name)
	}
	a.inputs[3].Placeholder = "medium"

	a.err = ""
	a.screen = screenNewTask
	a.focus(0)
}

func (a *App) focus(idx int) {
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
	a.focusIdx = idx
	a.inputs[idx].Focus()
}

// refresh rebuilds the view from the board.
func (a *App) refresh() {
	if a.board == nil {
		return
	}
	viewer, _ := a.session.Viewer()
	view, err := a.boards.View(viewer, a.board, filters[a.filter])
	if err != nil {
		a.err = err.Error()
		return
	}
	a.view = view
	a.clampRow()
}

func (a *App) clampRow() {
	if a.lane >= len(a.view.Lanes) {
		a.row = 0
		return
	}
	n := len(a.view.Lanes[a.lane].Tasks)
	if a.row >= n {
		a.row = n - 1
	}
	if a.row < 0 {
		a.row = 0
	}
}

func (a *App) selected() (ports.TaskView, bool) {
	if a.lane >= len(a.view.Lanes) {
		return ports.TaskView{}, false
	}
	tasks := a.view.Lanes[a.lane].Tasks
	if a.row < 0 || a.row >= len(tasks) {
		return ports.TaskView{}, false
	}
	return tasks[a.row], true
}

func laneIndex(status entities.TaskStatus) int {
	for i, s := range entities.Lanes {
		if s == status {
			return i
		}
	}
	return -1
}

func (a *App) View() string {
	var b strings.Builder

	switch a.screen {
	case screenLogin:
		b.WriteString(a.styles.Title.Render("FlowBoard · Sign in") + "\n\n")
		for _, in := range a.inputs {
			b.WriteString(in.View() + "\n")
		}
		b.WriteString(a.styles.Help.Render("tab next field · enter sign in · ctrl+c quit"))

	case screenNewTask:
		b.WriteString(a.styles.Title.Render("New task") + "\n\n")
		for _, in := range a.inputs {
			b.WriteString(in.View() + "\n")
		}
		b.WriteString(a.styles.Help.Render("tab next field · enter create · esc cancel"))

	default:
		b.WriteString(a.boardView())
	}

	if a.err != "" {
		b.WriteString("\n" + a.styles.Error.Render(a.err))
	} else if a.notice != "" {
		b.WriteString("\n" + a.styles.Notice.Render(a.notice))
	}
	return b.String()
}

func (a *App) boardView() string {
	var b strings.Builder

	header := "FlowBoard"
	if user, ok := a.session.User(); ok {
		header += a.styles.Muted.Render(fmt.Sprintf("  %s (%s) · priority: %s", user.Name, user.Role, filters[a.filter]))
	}
	b.WriteString(a.styles.Title.Render(header) + "\n")
	if a.view.Fallback {
		b.WriteString(a.styles.Banner.Render("The task store could not be reached. Showing sample tasks.") + "\n")
	}

	width := 28
	if a.width > 0 {
		width = max(24, (a.width-6)/3-4)
	}

	columns := make([]string, 0, len(a.view.Lanes))
	for i, lane := range a.view.Lanes {
		var col strings.Builder
		col.WriteString(a.styles.LaneTitle.Render(fmt.Sprintf("%s (%d)", lane.Title, lane.Count)) + "\n")
		for j, task := range lane.Tasks {
			col.WriteString(a.card(task, i == a.lane && j == a.row, width) + "\n")
		}
		style := a.styles.Lane
		if i == a.lane {
			style = a.styles.LaneFocus
		}
		columns = append(columns, style.Width(width).Render(col.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))

	if a.screen == screenConfirmDelete {
		b.WriteString("\n" + a.styles.Banner.Render(fmt.Sprintf("Delete task #%d? (y/n)", a.deleteID)))
	}

	help := make([]string, 0, len(a.keys.ShortHelp()))
	for _, k := range a.keys.ShortHelp() {
		help = append(help, k.Help().Key+" "+k.Help().Desc)
	}
	b.WriteString("\n" + a.styles.Help.Render(strings.Join(help, " · ")))
	return b.String()
}

func (a *App) card(task ports.TaskView, cursor bool, width int) string {
	style := a.styles.Card
	switch {
	case cursor:
		style = a.styles.CardCursor
	case !task.Access.CanMutate():
		style = a.styles.ReadOnly
	}

	prefix := "  "
	if cursor {
		prefix = "> "
	}
	title := prefix + truncate(task.Title, width-len(prefix))

	priority := string(task.Priority)
	if p, ok := a.styles.Priority[task.Priority]; ok {
		priority = p.Render(priority)
	}
	meta := fmt.Sprintf("  %s · %s · %d pts · %s", task.Type, priority, task.Points, task.Assignee)
	return style.Render(title) + "\n" + a.styles.Muted.Render(meta)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the program on the terminal.
func Run(app *App) error {
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(app.ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
