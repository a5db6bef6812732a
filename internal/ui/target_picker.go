package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/remote"
)

// TargetInfo is a target as shown in the picker.
type TargetInfo struct {
	Target    remote.Target
	Connected bool
}

// targetItem implements list.Item for the Bubbles list component.
type targetItem struct {
	info TargetInfo
}

func (i targetItem) Title() string {
	return i.info.Target.DisplayName()
}

func (i targetItem) Description() string {
	desc := fmt.Sprintf("id %d", i.info.Target.ID)
	if i.info.Connected {
		desc += " | connected"
	}
	return desc
}

func (i targetItem) FilterValue() string {
	return fmt.Sprintf("%s %d", i.info.Target.Name, i.info.Target.ID)
}

// TargetPickerModel is a Bubble Tea model for selecting a target.
type TargetPickerModel struct {
	list     list.Model
	selected *TargetInfo
	quitting bool
}

type targetPickerKeyMap struct {
	Enter key.Binding
	Quit  key.Binding
}

var targetPickerKeys = targetPickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "connect"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewTargetPickerModel creates a picker over targets.
func NewTargetPickerModel(targets []TargetInfo) TargetPickerModel {
	items := make([]list.Item, len(targets))
	for i, t := range targets {
		items[i] = targetItem{info: t}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 15)
	l.Title = "Select a community to connect"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle().Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{targetPickerKeys.Enter}
	}

	return TargetPickerModel{list: l}
}

// Init implements tea.Model.
func (m TargetPickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m TargetPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Keys belong to the filter input while the user is typing.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, targetPickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(targetItem); ok {
				m.selected = &item.info
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, targetPickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m TargetPickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen target, or nil if the picker was cancelled.
func (m TargetPickerModel) Selected() *TargetInfo {
	return m.selected
}

// PickTarget shows the interactive picker on the terminal.
func PickTarget(targets []TargetInfo) (*TargetInfo, error) {
	return PickTargetWithIO(targets, os.Stdout, os.Stdin)
}

// PickTargetWithIO shows the picker using custom I/O. It returns nil, nil
// when the user cancels, and the only target without prompting when there
// is exactly one.
func PickTargetWithIO(targets []TargetInfo, output io.Writer, input io.Reader) (*TargetInfo, error) {
	if len(targets) == 0 {
		return nil, errors.New(errors.ErrConfig, "No communities to pick from",
			"You need to administer a community before it can be connected")
	}
	if len(targets) == 1 {
		return &targets[0], nil
	}

	p := tea.NewProgram(
		NewTargetPickerModel(targets),
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Target picker failed",
			"Pass the community id directly: hublink connect <id>")
	}
	if m, ok := finalModel.(TargetPickerModel); ok {
		return m.Selected(), nil
	}
	return nil, nil
}
