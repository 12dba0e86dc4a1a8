package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kittrack/kittrack/pkg/collector"
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/stepper"
	"github.com/kittrack/kittrack/pkg/tracking"
)

const (
	stepMeals = 1
	stepStool = 2
	stepMood  = 3
	numSteps  = 3
)

// MenuSource loads the catalog of every meal for a kit.
type MenuSource interface {
	LoadAll(ctx context.Context, kitID string) (map[tracking.MealType]*menu.Menu, error)
}

// Submitter sends a finished record.
type Submitter interface {
	Submit(ctx context.Context, rec tracking.TrackingRecord) error
}

// Alerts collects messages raised while a command runs so the wizard can
// show them as a modal once the command returns.
type Alerts struct {
	mu   sync.Mutex
	msgs []string
}

func NewAlerts() *Alerts { return &Alerts{} }

func (a *Alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

// Drain returns and clears the collected messages.
func (a *Alerts) Drain() []string {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.msgs
	a.msgs = nil
	return out
}

type Config struct {
	KitID     string
	Menus     MenuSource
	Submitter Submitter
	Alerts    *Alerts
	// History is drawn as the mood chart after a successful submission.
	History []tracking.MoodPoint
	Now     func() time.Time
	Log     tracking.Logger
	Timeout time.Duration
}

// panels tracks which step body is on screen.
type panels struct {
	visible int
}

func (p *panels) Hide(n int) {
	if p.visible == n {
		p.visible = 0
	}
}

func (p *panels) Show(n int) { p.visible = n }

type menusLoadedMsg struct {
	menus map[tracking.MealType]*menu.Menu
	err   error
}

type submittedMsg struct {
	rec    tracking.TrackingRecord
	err    error
	alerts []string
}

// row is one line of the meal step: a category header when item is empty.
type row struct {
	meal     tracking.MealType
	category string
	item     string
}

func (r row) isHeader() bool { return r.item == "" }

func (r row) id() tracking.ItemID {
	return tracking.ItemID{Meal: r.meal, Category: r.category, Item: r.item}
}

var stoolFields = []struct {
	label string
	max   int
}{
	{"Type", 7},
	{"Relief", 5},
	{"Smell", 5},
}

type Model struct {
	cfg      Config
	styles   Styles
	stepper  *stepper.Stepper
	panels   *panels
	progress progress.Model
	percent  float64
	form     *collector.Form

	cursor     int
	stoolField int
	stool      [3]int
	mood       int

	loading    bool
	submitting bool
	done       bool
	alert      string
	history    []tracking.MoodPoint
	width      int
}

func New(cfg Config) *Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = tracking.NopLogger{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	m := &Model{
		cfg:      cfg,
		styles:   DefaultStyles(),
		panels:   &panels{},
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		form:     collector.NewForm(),
		stool:    [3]int{tracking.DefaultScale, tracking.DefaultScale, tracking.DefaultScale},
		mood:     tracking.DefaultScale,
		loading:  cfg.Menus != nil,
		history:  append([]tracking.MoodPoint(nil), cfg.History...),
		width:    80,
	}
	m.stepper = stepper.New(numSteps,
		stepper.WithTransition(m.panels),
		stepper.WithProgress(func(p float64) { m.percent = p }),
	)
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.cfg.Menus == nil {
		return nil
	}
	src, kitID, timeout := m.cfg.Menus, m.cfg.KitID, m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		menus, err := src.LoadAll(ctx, kitID)
		return menusLoadedMsg{menus: menus, err: err}
	}
}

// Form exposes the view-model behind the wizard.
func (m *Model) Form() *collector.Form { return m.form }

// Done reports whether a record was submitted successfully.
func (m *Model) Done() bool { return m.done }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, msg.Width-4)
		return m, nil

	case menusLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.cfg.Log.Errorf("Error loading menu data: %v", msg.err)
			m.alert = "Failed to load menu"
			return m, nil
		}
		for _, meal := range tracking.MealTypes() {
			if mm := msg.menus[meal]; mm != nil {
				m.form.SetMenu(mm)
			}
		}
		m.cursor = 0
		return m, nil

	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.cfg.Log.Errorf("Error saving tracking data: %v", msg.err)
			m.alert = "Failed to save data"
			if len(msg.alerts) > 0 {
				m.alert = msg.alerts[0]
			}
			return m, nil
		}
		m.done = true
		m.stepper.Reset()
		m.form.ResetMood()
		m.history = append(m.history, tracking.MoodPoint{Date: msg.rec.Date, Mood: msg.rec.Mood.Level()})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *Model) handleKey(key string) (tea.Model, tea.Cmd) {
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	// The alert is modal until dismissed.
	if m.alert != "" {
		if key == "enter" || key == "esc" || key == " " {
			m.alert = ""
		}
		return m, nil
	}
	if m.done {
		if key == "q" || key == "enter" || key == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "n":
		m.stepper.Next()
		return m, nil
	case "shift+tab", "p":
		m.stepper.Previous()
		return m, nil
	}
	if m.submitting {
		return m, nil
	}

	switch m.stepper.Current() {
	case stepMeals:
		m.updateMeals(key)
	case stepStool:
		m.updateStool(key)
	case stepMood:
		return m, m.updateMood(key)
	}
	return m, nil
}

func (m *Model) rows() []row {
	var out []row
	for _, meal := range tracking.MealTypes() {
		mm := m.form.Menu(meal)
		if mm == nil {
			continue
		}
		for _, c := range mm.Categories {
			out = append(out, row{meal: meal, category: c.Name})
			if !mm.Expanded(c.Name) {
				continue
			}
			for _, item := range c.Items {
				out = append(out, row{meal: meal, category: c.Name, item: item})
			}
		}
	}
	return out
}

func (m *Model) updateMeals(key string) {
	rows := m.rows()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case " ", "enter", "x":
		if m.cursor >= len(rows) {
			return
		}
		r := rows[m.cursor]
		if r.isHeader() {
			m.form.Menu(r.meal).Toggle(r.category)
			break
		}
		if err := m.form.Apply(collector.ToggleItem{ID: r.id()}); err != nil {
			m.cfg.Log.Warnf("Could not toggle %s: %v", r.id(), err)
		}
	}
	if n := len(m.rows()); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
}

func (m *Model) updateStool(key string) {
	f := &m.stool[m.stoolField]
	limit := stoolFields[m.stoolField].max
	switch key {
	case "up", "k":
		if m.stoolField > 0 {
			m.stoolField--
		}
		return
	case "down", "j":
		if m.stoolField < len(stoolFields)-1 {
			m.stoolField++
		}
		return
	case "left", "h":
		if *f > 1 {
			*f--
		}
	case "right", "l":
		if *f < limit {
			*f++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' && int(key[0]-'0') <= limit {
			*f = int(key[0] - '0')
		} else {
			return
		}
	}

	var ev collector.Event
	switch m.stoolField {
	case 0:
		ev = collector.SetStool{Type: *f}
	case 1:
		ev = collector.SetRelief{Value: *f}
	default:
		ev = collector.SetSmell{Value: *f}
	}
	if err := m.form.Apply(ev); err != nil {
		m.cfg.Log.Warnf("Could not set stool field: %v", err)
	}
}

func (m *Model) updateMood(key string) tea.Cmd {
	switch key {
	case "left", "h":
		if m.mood > 1 {
			m.mood--
		}
	case "right", "l":
		if m.mood < tracking.MoodMax {
			m.mood++
		}
	case "a":
		m.form.Apply(collector.AddMoodEntry{Time: m.cfg.Now().Format("15:04"), Mood: m.mood})
		return nil
	case "enter", "s":
		return m.submit()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '7' {
			m.mood = int(key[0] - '0')
		} else {
			return nil
		}
	}
	m.form.Apply(collector.SetMood{Value: m.mood})
	return nil
}

// submit is not a step transition. It returns nil while a submission is
// already in flight.
func (m *Model) submit() tea.Cmd {
	if m.submitting || m.done || m.cfg.Submitter == nil {
		return nil
	}
	m.submitting = true

	rec := collector.Collect(m.form, m.cfg.KitID, m.cfg.Now())
	sub, alerts, timeout := m.cfg.Submitter, m.cfg.Alerts, m.cfg.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := sub.Submit(ctx, rec)
		return submittedMsg{rec: rec, err: err, alerts: alerts.Drain()}
	}
}

func (m *Model) View() string {
	if m.alert != "" {
		return m.styles.Alert.Render(m.alert+"\n\n"+m.styles.Muted.Render("press enter to dismiss")) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Kit "+m.cfg.KitID) + "  ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Step %d of %d", m.stepper.Current(), m.stepper.Total())) + "\n")
	b.WriteString(m.progress.ViewAs(m.percent/100) + "\n\n")

	if m.done {
		b.WriteString(m.styles.Success.Render("Saved.") + "\n\n")
		b.WriteString(MoodChart(m.history, m.width, m.styles) + "\n\n")
		b.WriteString(m.styles.Muted.Render("enter/q: quit") + "\n")
		return b.String()
	}

	switch m.panels.visible {
	case stepMeals:
		b.WriteString(m.viewMeals())
	case stepStool:
		b.WriteString(m.viewStool())
	case stepMood:
		b.WriteString(m.viewMood())
	}

	b.WriteString("\n" + m.styles.Muted.Render("tab/shift+tab: step  q: quit") + "\n")
	return b.String()
}

func (m *Model) viewMeals() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Meals") + "\n")
	if m.loading {
		b.WriteString(m.styles.Muted.Render("Loading menu...") + "\n")
		return b.String()
	}

	var lastMeal tracking.MealType
	for i, r := range m.rows() {
		if r.meal != lastMeal {
			b.WriteString("\n" + m.styles.Title.Render(strings.ToUpper(string(r.meal))) + "\n")
			lastMeal = r.meal
		}
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		if r.isHeader() {
			arrow := "▸"
			if m.form.Menu(r.meal).Expanded(r.category) {
				arrow = "▾"
			}
			n := len(m.form.Selected(r.meal)[r.category])
			line := fmt.Sprintf("%s %s", arrow, r.category)
			if n > 0 {
				line += m.styles.Selected.Render(fmt.Sprintf(" (%d)", n))
			}
			b.WriteString(cursor + line + "\n")
			continue
		}
		box := "[ ]"
		if m.form.IsChecked(r.id()) {
			box = m.styles.Selected.Render("[x]")
		}
		b.WriteString(cursor + "    " + box + " " + r.item + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("space: expand/select  j/k: move") + "\n")
	return b.String()
}

func (m *Model) viewStool() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Stool") + "\n\n")
	for i, f := range stoolFields {
		cursor := "  "
		if i == m.stoolField {
			cursor = m.styles.Cursor.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-7s %s\n", cursor, f.label, scaleBar(m.stool[i], f.max, m.styles)))
	}
	b.WriteString("\n" + m.styles.Muted.Render("j/k: field  h/l or 1-9: value") + "\n")
	return b.String()
}

func (m *Model) viewMood() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Mood") + "\n\n")
	b.WriteString(scaleBar(m.mood, tracking.MoodMax, m.styles) + "\n")
	if entries := m.form.MoodLog(); len(entries) > 0 {
		b.WriteString("\n")
		for _, e := range entries {
			b.WriteString(fmt.Sprintf("  %s  %d\n", e.Time, e.Mood))
		}
	}
	if m.submitting {
		b.WriteString("\n" + m.styles.Muted.Render("Submitting...") + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("h/l or 1-7: mood  a: log reading  enter: submit") + "\n")
	return b.String()
}

func scaleBar(v, limit int, styles Styles) string {
	var b strings.Builder
	for i := 1; i <= limit; i++ {
		if i == v {
			b.WriteString(styles.Cursor.Render(fmt.Sprintf("[%d]", i)))
		} else {
			b.WriteString(fmt.Sprintf(" %d ", i))
		}
	}
	return b.String()
}
