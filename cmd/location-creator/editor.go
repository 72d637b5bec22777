package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/location-creator/internal/form"
	"github.com/jwebster45206/location-creator/internal/images"
	"github.com/jwebster45206/location-creator/internal/logger"
	"github.com/jwebster45206/location-creator/internal/storage"
	"github.com/jwebster45206/location-creator/pkg/location"
)

const (
	listWidth       = 26
	maxPreviewWidth = 50
	labelWidth      = 22
)

// Focus targets, in tab order. The six connection selectors follow focusShort.
const (
	focusList = iota
	focusImage
	focusTerrain
	focusMonster
	focusTreasure
	focusDungeon
	focusDescription
	focusShort
	focusNorth
)

const focusCount = focusNorth + len(location.Directions)

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Width(labelWidth)

	focusedLabelStyle = labelStyle.
				Foreground(lipgloss.Color("212")). // purple
				Bold(true)

	selectorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	focusedSelectorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

const helpText = "ctrl+n new • enter select • ctrl+w save location • ctrl+d delete • " +
	"ctrl+o import image • ctrl+s save all • ctrl+l load all • ctrl+y copy JSON • " +
	"tab/shift+tab move • ←/→ change link • esc quit"

// locationItem is one row of the location list.
type locationItem struct {
	id      string
	terrain string
}

func (i locationItem) Title() string       { return i.id }
func (i locationItem) Description() string { return i.terrain }
func (i locationItem) FilterValue() string { return i.id + " " + i.terrain }

// EditorUI is the BubbleTea model of the location editor.
type EditorUI struct {
	ctrl    *form.Controller
	storage storage.Storage
	logger  *slog.Logger

	list        list.Model
	imageInput  textinput.Model
	terrain     textinput.Model
	chances     [3]textinput.Model
	description textarea.Model
	short       textarea.Model
	pathInput   textinput.Model

	focus  int
	width  int
	height int
	ready  bool

	// shown holds the widget text as last loaded from the controller.
	shown [7]string

	status      string
	statusIsErr bool

	showImportPrompt bool
	showQuitModal    bool

	// copyToClipboard is swapped out in tests.
	copyToClipboard func(string) error
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = limit
	ti.Width = 30
	return ti
}

func newArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(50)
	ta.SetHeight(height)
	return ta
}

func NewEditorUI(ctrl *form.Controller, st storage.Storage, log *slog.Logger) EditorUI {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, listWidth, 20)
	l.Title = "Locations"
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	m := EditorUI{
		ctrl:            ctrl,
		storage:         st,
		logger:          log,
		list:            l,
		imageInput:      newInput("images/forest.png", 0),
		terrain:         newInput("Forest", 0),
		description:     newArea("Long description...", 4),
		short:           newArea("Short description...", 2),
		pathInput:       newInput("path/to/image.png", 0),
		copyToClipboard: clipboard.WriteAll,
	}
	for i := range m.chances {
		m.chances[i] = newInput(location.DefaultChance, 3)
		m.chances[i].Width = 5
	}
	m.pathInput.Width = 50
	m.refreshList()
	m.setStatus("Ready. Press ctrl+l to load " + st.Describe() + " or ctrl+n to add a location.")
	return m
}

func (m EditorUI) Init() tea.Cmd {
	return nil
}

func (m EditorUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showImportPrompt {
		return m.updateImportPrompt(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		// While the list filter is open every key except ctrl+c belongs to it.
		if m.focus == focusList && m.list.FilterState() == list.Filtering && msg.Type != tea.KeyCtrlC {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab:
			cmd := m.setFocus((m.focus + 1) % focusCount)
			return m, cmd
		case tea.KeyShiftTab:
			cmd := m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, cmd
		case tea.KeyCtrlN:
			m.newLocation()
			return m, nil
		case tea.KeyCtrlW:
			m.saveCurrent()
			return m, nil
		case tea.KeyCtrlD:
			m.deleteCurrent()
			return m, nil
		case tea.KeyCtrlO:
			cmd := m.openImportPrompt()
			return m, cmd
		case tea.KeyCtrlS:
			m.saveAll()
			return m, nil
		case tea.KeyCtrlL:
			m.loadAll()
			return m, nil
		case tea.KeyCtrlY:
			m.copyCurrent()
			return m, nil
		}

		switch {
		case m.focus == focusList && msg.Type == tea.KeyEnter:
			m.selectHighlighted()
			return m, nil
		case m.focus == focusImage && msg.Type == tea.KeyEnter:
			m.syncToController()
			return m, nil
		case m.focus >= focusNorth:
			m.updateSelector(msg)
			return m, nil
		}
	}

	cmd := m.updateFocused(msg)
	return m, cmd
}

func (m *EditorUI) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusList:
		m.list, cmd = m.list.Update(msg)
	case focusImage:
		m.imageInput, cmd = m.imageInput.Update(msg)
	case focusTerrain:
		m.terrain, cmd = m.terrain.Update(msg)
	case focusMonster, focusTreasure, focusDungeon:
		i := m.focus - focusMonster
		m.chances[i], cmd = m.chances[i].Update(msg)
	case focusDescription:
		m.description, cmd = m.description.Update(msg)
	case focusShort:
		m.short, cmd = m.short.Update(msg)
	}
	return cmd
}

func (m *EditorUI) setFocus(target int) tea.Cmd {
	m.imageInput.Blur()
	m.terrain.Blur()
	for i := range m.chances {
		m.chances[i].Blur()
	}
	m.description.Blur()
	m.short.Blur()

	m.focus = target
	switch target {
	case focusImage:
		return m.imageInput.Focus()
	case focusTerrain:
		return m.terrain.Focus()
	case focusMonster, focusTreasure, focusDungeon:
		return m.chances[target-focusMonster].Focus()
	case focusDescription:
		return m.description.Focus()
	case focusShort:
		return m.short.Focus()
	}
	return nil
}

func (m *EditorUI) resize() {
	m.list.SetSize(listWidth, max(m.height-2, 5))

	formWidth := m.formWidth()
	inputWidth := max(formWidth-labelWidth-4, 10)
	m.imageInput.Width = inputWidth
	m.terrain.Width = inputWidth
	m.description.SetWidth(max(formWidth-2, 10))
	m.short.SetWidth(max(formWidth-2, 10))
	m.pathInput.Width = max(min(m.width-20, 70), 20)
}

func (m EditorUI) previewWidth() int {
	return max(min(maxPreviewWidth, m.width/3), 0)
}

func (m EditorUI) formWidth() int {
	return max(m.width-listWidth-m.previewWidth()-6, 30)
}

// inputValues reads the text widgets in a fixed order: image, terrain, the
// three chances, description, short description.
func (m *EditorUI) inputValues() [7]string {
	return [7]string{
		m.imageInput.Value(),
		m.terrain.Value(),
		m.chances[0].Value(),
		m.chances[1].Value(),
		m.chances[2].Value(),
		m.description.Value(),
		m.short.Value(),
	}
}

// syncToController copies the text inputs into the form controller. Only
// widgets whose text changed since the record was shown are copied, so a
// value the widget cannot hold verbatim survives a flush untouched. The
// selectors write through SetConnection as they change, so their values are
// taken from the controller.
func (m *EditorUI) syncToController() {
	if m.ctrl.State() != form.Editing {
		return
	}
	f := m.ctrl.Fields()
	targets := [7]*string{
		&f.Image,
		&f.Terrain,
		&f.MonsterChance,
		&f.RandomTreasureChance,
		&f.DungeonChance,
		&f.Description,
		&f.ShortDescription,
	}

	values := m.inputValues()
	imageChanged := false
	for i, v := range values {
		if v == m.shown[i] {
			continue
		}
		*targets[i] = v
		if i == 0 {
			imageChanged = true
		}
	}
	m.shown = values
	m.ctrl.SetFields(f)

	if imageChanged {
		if err := m.ctrl.RefreshPreview(); err != nil {
			m.setError(fmt.Errorf("preview unavailable: %w", err))
		}
	}
}

// syncFromController shows the controller's fields in the inputs.
func (m *EditorUI) syncFromController() {
	f := m.ctrl.Fields()
	m.imageInput.SetValue(f.Image)
	m.terrain.SetValue(f.Terrain)
	m.chances[0].SetValue(f.MonsterChance)
	m.chances[1].SetValue(f.RandomTreasureChance)
	m.chances[2].SetValue(f.DungeonChance)
	m.description.SetValue(f.Description)
	m.short.SetValue(f.ShortDescription)
	m.shown = m.inputValues()
}

func (m *EditorUI) refreshList() {
	ids := m.ctrl.IDs()
	items := make([]list.Item, 0, len(ids))
	for _, id := range ids {
		item := locationItem{id: id}
		if rec, err := m.ctrl.Record(id); err == nil {
			item.terrain = rec.Terrain
		}
		items = append(items, item)
	}
	m.list.SetItems(items)

	if current, ok := m.ctrl.Current(); ok {
		for i, id := range ids {
			if id == current {
				m.list.Select(i)
				break
			}
		}
	}
}

func (m *EditorUI) setStatus(msg string) {
	m.status = msg
	m.statusIsErr = false
}

func (m *EditorUI) setError(err error) {
	logger.WithError(m.logger, err).Debug("Editor action failed")
	m.status = err.Error()
	m.statusIsErr = true
}

func (m *EditorUI) newLocation() {
	m.syncToController()
	id := m.ctrl.New()
	m.refreshList()
	m.setStatus(fmt.Sprintf("Added location %s. Select it from the list to edit.", id))
}

func (m *EditorUI) selectHighlighted() {
	item, ok := m.list.SelectedItem().(locationItem)
	if !ok {
		return
	}
	m.selectLocation(item.id)
}

func (m *EditorUI) selectLocation(id string) {
	m.syncToController()
	if err := m.ctrl.Select(id); err != nil {
		// An id that vanished from the store is ignored.
		logger.WithError(logger.WithLocation(m.logger, id), err).Debug("Selection ignored")
		return
	}
	m.syncFromController()
	m.refreshList()
	logger.WithLocation(m.logger, id).Debug("Editing location")

	if _, err := m.ctrl.Preview(); err != nil {
		m.setError(fmt.Errorf("location %s: preview unavailable: %w", id, err))
		return
	}
	m.setStatus(fmt.Sprintf("Editing location %s.", id))
}

func (m *EditorUI) saveCurrent() {
	m.syncToController()
	if err := m.ctrl.FlushCurrent(); err != nil {
		m.setError(err)
		return
	}
	m.syncFromController()
	m.refreshList()

	id, _ := m.ctrl.Current()
	m.setStatus(fmt.Sprintf("Saved location %s.", id))
}

func (m *EditorUI) deleteCurrent() {
	id, _ := m.ctrl.Current()
	if err := m.ctrl.DeleteCurrent(); err != nil {
		m.setError(err)
		return
	}
	m.syncFromController()
	m.refreshList()
	m.setStatus(fmt.Sprintf("Deleted location %s.", id))
}

func (m *EditorUI) saveAll() {
	m.syncToController()
	if err := m.ctrl.SaveAll(context.Background(), m.storage); err != nil {
		m.setError(fmt.Errorf("save failed: %w", err))
		return
	}
	m.syncFromController()
	m.refreshList()
	m.setStatus(fmt.Sprintf("Saved %d locations to %s.", len(m.ctrl.IDs()), m.storage.Describe()))
}

func (m *EditorUI) loadAll() {
	if err := m.ctrl.LoadAll(context.Background(), m.storage); err != nil {
		m.setError(fmt.Errorf("load failed, keeping current locations: %w", err))
		return
	}
	m.syncFromController()
	m.refreshList()

	msg := fmt.Sprintf("Loaded %d locations from %s.", len(m.ctrl.IDs()), m.storage.Describe())
	if dangling := m.ctrl.Dangling(); len(dangling) > 0 {
		refs := make([]string, 0, len(dangling))
		for _, d := range dangling {
			refs = append(refs, d.String())
		}
		msg += fmt.Sprintf(" %d links point at missing locations: %s.", len(dangling), strings.Join(refs, ", "))
	}
	m.setStatus(msg)
}

func (m *EditorUI) copyCurrent() {
	m.syncToController()
	if err := m.ctrl.FlushCurrent(); err != nil {
		m.setError(err)
		return
	}
	rec, err := m.ctrl.CurrentRecord()
	if err != nil {
		m.setError(err)
		return
	}
	data, err := json.MarshalIndent(map[string]location.Record{rec.ID: rec}, "", location.Indent)
	if err != nil {
		m.setError(fmt.Errorf("failed to marshal location %s: %w", rec.ID, err))
		return
	}
	if err := m.copyToClipboard(string(data)); err != nil {
		m.setError(fmt.Errorf("clipboard unavailable: %w", err))
		return
	}
	m.setStatus(fmt.Sprintf("Copied location %s to the clipboard.", rec.ID))
}

// updateSelector cycles the focused connection selector through the neighbor options.
func (m *EditorUI) updateSelector(msg tea.KeyMsg) {
	var step int
	switch msg.Type {
	case tea.KeyRight:
		step = 1
	case tea.KeyLeft:
		step = -1
	case tea.KeyBackspace, tea.KeyDelete:
		step = 0
	default:
		return
	}
	if m.ctrl.State() != form.Editing {
		m.setError(form.ErrNoSelection)
		return
	}

	d := location.Directions[m.focus-focusNorth]
	options := m.ctrl.NeighborOptions()
	next := ""
	if step != 0 {
		current := m.ctrl.Fields().Connections.Get(d)
		idx := 0
		for i, opt := range options {
			if opt == current {
				idx = i
				break
			}
		}
		next = options[(idx+step+len(options))%len(options)]
	}
	m.ctrl.SetConnection(d, next)
}

func (m *EditorUI) openImportPrompt() tea.Cmd {
	if m.ctrl.State() != form.Editing {
		m.setError(form.ErrNoSelection)
		return nil
	}
	m.syncToController()
	m.showImportPrompt = true
	m.pathInput.Reset()
	return m.pathInput.Focus()
}

func (m EditorUI) updateImportPrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.closeImportPrompt()
			m.setStatus("Image import cancelled.")
			return m, nil
		case tea.KeyEnter:
			path := strings.TrimSpace(m.pathInput.Value())
			m.closeImportPrompt()
			if path == "" {
				m.setStatus("Image import cancelled.")
				return m, nil
			}
			m.importImage(path)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *EditorUI) closeImportPrompt() {
	m.showImportPrompt = false
	m.pathInput.Blur()
	m.pathInput.Reset()
}

func (m *EditorUI) importImage(path string) {
	before := m.ctrl.Fields().Image
	err := m.ctrl.SetImage(path)
	m.syncFromController()

	after := m.ctrl.Fields().Image
	switch {
	case err == nil:
		m.setStatus(fmt.Sprintf("Image set to %s.", after))
	case after != before && errors.Is(err, images.ErrImageUnavailable):
		m.setError(fmt.Errorf("image set to %s, but the preview is unavailable: %w", after, err))
	default:
		m.setError(fmt.Errorf("image import failed: %w", err))
	}
}

func (m EditorUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				cmd := m.setFocus(m.focus)
				return m, cmd
			}
		}
	}

	return m, nil
}

func (m EditorUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Editor?"))
	content.WriteString("\n\n")
	content.WriteString("Changes since the last Save All (ctrl+s) will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m EditorUI) renderImportPrompt() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Import Image"))
	content.WriteString("\n\n")
	content.WriteString("GIF, PNG, JPEG or BMP. The file is copied into the image directory.")
	content.WriteString("\n\n")
	content.WriteString(m.pathInput.View())
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Enter to import, Esc to cancel"))

	modal := modalStyle.Width(max(min(m.width-10, 80), 40)).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m EditorUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showImportPrompt {
		return m.renderImportPrompt()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	listPanel := lipgloss.NewStyle().PaddingTop(1).PaddingLeft(1).Render(m.list.View())
	formPanel := panelStyle.Width(m.formWidth()).Render(m.renderForm())
	previewPanel := panelStyle.Render(m.renderPreview())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPanel, formPanel, previewPanel)
}

func (m EditorUI) renderForm() string {
	width := m.formWidth()
	var b strings.Builder

	if id, ok := m.ctrl.Current(); ok {
		b.WriteString(titleStyle.Render("LOCATION " + id))
	} else {
		b.WriteString(titleStyle.Render("NO LOCATION SELECTED"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.label(focusImage, "Image") + m.imageInput.View() + "\n")
	b.WriteString(m.label(focusTerrain, "Terrain") + m.terrain.View() + "\n")
	b.WriteString(m.label(focusMonster, "Monster Chance") + m.chances[0].View() + "\n")
	b.WriteString(m.label(focusTreasure, "Random Treasure Chance") + m.chances[1].View() + "\n")
	b.WriteString(m.label(focusDungeon, "Dungeon Chance") + m.chances[2].View() + "\n\n")

	b.WriteString(m.label(focusDescription, "Description") + "\n")
	b.WriteString(m.description.View() + "\n")
	b.WriteString(m.label(focusShort, "Short Description") + "\n")
	b.WriteString(m.short.View() + "\n\n")

	conns := m.ctrl.Fields().Connections
	for i, d := range location.Directions {
		focus := focusNorth + i
		value := conns.Get(d)
		if value == "" {
			value = "(none)"
		}
		style := selectorStyle
		if m.focus == focus {
			style = focusedSelectorStyle
		}
		b.WriteString(m.label(focus, d.Label()) + style.Render("‹ "+value+" ›") + "\n")
	}

	b.WriteString("\n")
	status := wordwrap.String(m.status, width-2)
	if m.statusIsErr {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(wordwrap.String(helpText, width-2)))

	return b.String()
}

func (m EditorUI) label(focus int, text string) string {
	if m.focus == focus {
		return focusedLabelStyle.Render("▶ " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m EditorUI) renderPreview() string {
	width := m.previewWidth()
	if width == 0 || m.ctrl.State() != form.Editing {
		return ""
	}

	img, err := m.ctrl.Preview()
	switch {
	case err != nil:
		return errorStyle.Render(wordwrap.String("Preview unavailable", width))
	case img == nil:
		return promptStyle.Render("No image")
	}
	return images.RenderBlocks(img, width)
}
