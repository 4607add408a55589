package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prodgraph/pkg/catalog"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ItemPickerModel - Interactive item selection
// =============================================================================

// ItemPickerModel is the bubbletea model for interactive item selection.
// Typing filters the list with the catalog's fuzzy search.
type ItemPickerModel struct {
	Catalog  *catalog.Catalog
	Language string
	Query    string
	Matches  []catalog.Match
	Cursor   int
	Offset   int
	Height   int
	Selected *catalog.Item
}

// NewItemPickerModel creates a picker listing the craftable items of cat.
func NewItemPickerModel(cat *catalog.Catalog, lang string) ItemPickerModel {
	m := ItemPickerModel{Catalog: cat, Language: lang, Height: 15}
	m.refresh()
	return m
}

func (m *ItemPickerModel) refresh() {
	m.Matches = searchItems(m.Catalog, m.Query, m.Language, true, 0)
	m.Cursor = 0
	m.Offset = 0
}

func (m ItemPickerModel) Init() tea.Cmd {
	return nil
}

func (m ItemPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Matches) == 0 {
				return m, nil
			}
			item := m.Matches[m.Cursor].Item
			m.Selected = &item
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.Query); len(r) > 0 {
				m.Query = string(r[:len(r)-1])
				m.refresh()
			}
		case tea.KeyRunes, tea.KeySpace:
			m.Query += string(msg.Runes)
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 7
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ItemPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Item"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("type to filter  ↑/↓ navigate  ⏎ select  esc quit"))
	b.WriteString("\n\n")
	b.WriteString("› " + m.Query + listDimStyle.Render("█"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Matches) {
		end = len(m.Matches)
	}
	for i := m.Offset; i < end; i++ {
		item := m.Matches[i].Item
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-28s %s", cursor, item.Name(m.Language), listDimStyle.Render(item.ID))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(m.Matches) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Matches)), len(m.Matches))))

	return b.String()
}

// pickCommand creates the pick command: choose an item interactively, then
// print its chain like resolve.
func (c *CLI) pickCommand() *cobra.Command {
	var (
		flags chainFlags
		keys  bool
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick an item interactively and print its production chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if lang == "" {
				lang = cfg.Language
			}

			final, err := tea.NewProgram(NewItemPickerModel(cat, lang), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("item picker: %w", err)
			}
			picked, ok := final.(ItemPickerModel)
			if !ok || picked.Selected == nil {
				printInfo("No item selected")
				return nil
			}
			flags.language = lang
			return c.runResolve(cmd.Context(), picked.Selected.ID, &flags, "", keys)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&keys, "keys", false, "show settings keys")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "display language: en, de (default from config)")

	return cmd
}
