package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/nocgen/pkg/network"
	"github.com/matzehuels/nocgen/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeBrowserModel - Interactive node inspection
// =============================================================================

// NodeBrowserModel is the bubbletea model for browsing a network's nodes
// and the nodes they link to.
type NodeBrowserModel struct {
	Network *network.Descriptor
	Links   topology.EdgeSet
	Cursor  int
	Height  int
	Offset  int

	// RoutersOnly hides processing elements from the list.
	RoutersOnly bool
}

// NewNodeBrowserModel creates a browser over d. Links are rebuilt from the
// descriptor's connections.
func NewNodeBrowserModel(d *network.Descriptor) NodeBrowserModel {
	links := topology.NewEdgeSet()
	for _, c := range d.Connections {
		e := c.Edge()
		links.Add(e.A, e.B)
	}
	return NodeBrowserModel{
		Network: d,
		Links:   links,
		Height:  15,
	}
}

// visible returns the number of listed nodes. Routers come first in the
// descriptor, so hiding PEs truncates the list.
func (m NodeBrowserModel) visible() int {
	if m.RoutersOnly {
		return len(m.Network.Nodes) / 2
	}
	return len(m.Network.Nodes)
}

func (m NodeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m NodeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-m.Cursor)
		case "end", "G":
			m.move(m.visible())
		case "p":
			m.RoutersOnly = !m.RoutersOnly
			m.move(0)
		case "enter", "l":
			// Jump to the first neighbour of the selected node.
			if n := m.Links.Neighbours(m.Cursor); len(n) > 0 && n[0] < m.visible() {
				m.move(n[0] - m.Cursor)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and scrolls.
func (m *NodeBrowserModel) move(delta int) {
	last := m.visible() - 1
	m.Cursor = max(0, min(m.Cursor+delta, last))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m NodeBrowserModel) View() string {
	var b strings.Builder

	d := m.Network
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s network", d.Topology)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d layers · %d nodes · %d connections",
		d.Layers, len(d.Nodes), len(d.Connections))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ follow link  p toggle PEs  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, m.visible())
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := d.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.ID),
			m.kind(n),
			fmt.Sprintf("(%d,%d,%d)", n.Index.X, n.Index.Y, n.Index.Z),
			fmt.Sprintf("(%s, %s, %s)", fmtNorm(n.Pos.X), fmtNorm(n.Pos.Y), fmtNorm(n.Pos.Z)),
			strconv.Itoa(len(m.Links.Neighbours(n.ID))),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Type", "Index", "Position", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(d.Nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if idx >= len(d.Nodes)/2 {
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, m.visible())))

	return b.String()
}

// detail describes the selected node's links.
func (m NodeBrowserModel) detail() string {
	if len(m.Network.Nodes) == 0 {
		return listDimStyle.Render("  no nodes")
	}
	n := m.Network.Nodes[m.Cursor]
	var parts []string
	for _, id := range m.Links.Neighbours(n.ID) {
		other := m.Network.Nodes[id]
		label := fmt.Sprintf("%d %s", id, m.kind(other))
		if other.Layer != n.Layer {
			label += fmt.Sprintf(" (layer %d)", other.Layer)
		}
		parts = append(parts, label)
	}
	line := listSelectedStyle.Render(fmt.Sprintf("  %d %s", n.ID, m.kind(n)))
	if len(parts) == 0 {
		return line + listDimStyle.Render("  unlinked")
	}
	return line + listDimStyle.Render("  → ") + listNormalStyle.Render(strings.Join(parts, ", "))
}

func (m NodeBrowserModel) kind(n network.Node) string {
	if n.NodeType < len(m.Network.NodeTypes) && m.Network.NodeTypes[n.NodeType].IsRouter() {
		return "router"
	}
	return "pe"
}

// =============================================================================
// Helpers
// =============================================================================

func fmtNorm(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
