package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"

	"github.com/wippyai/wasm-libc/errno"
	"github.com/wippyai/wasm-libc/intparse"
	"github.com/wippyai/wasm-libc/locale"
	"github.com/wippyai/wasm-libc/mbconv"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const (
	fieldText = iota
	fieldNumber
	numFields
)

type inspectorModel struct {
	locales  []*locale.Locale
	inputs   []textinput.Model
	current  int
	focusIdx int
}

func newInspectorModel(initial string) (*inspectorModel, error) {
	reg := locale.NewRegistry()
	// Make a few common names selectable next to the built-ins.
	for _, name := range []string{"en_US.UTF-8", "de_DE.UTF-8", "ja_JP.UTF-8", "en_US.US-ASCII"} {
		if _, err := reg.Lookup(name); err != nil {
			return nil, err
		}
	}
	start := locale.Default()
	if initial != "" {
		l, err := reg.Lookup(initial)
		if err != nil {
			return nil, err
		}
		start = l
	}

	m := &inspectorModel{}
	for _, name := range reg.Names() {
		l, err := reg.Lookup(name)
		if err != nil || containsLocale(m.locales, l) {
			continue
		}
		if l == start {
			m.current = len(m.locales)
		}
		m.locales = append(m.locales, l)
	}

	m.inputs = make([]textinput.Model, numFields)
	text := textinput.New()
	text.Prompt = "text:   "
	text.Placeholder = "héllo 😀"
	text.Width = 40
	text.Focus()
	m.inputs[fieldText] = text

	num := textinput.New()
	num.Prompt = "number: "
	num.Placeholder = "  -0x7fffffff"
	num.Width = 40
	m.inputs[fieldNumber] = num

	return m, nil
}

func containsLocale(ls []*locale.Locale, l *locale.Locale) bool {
	for _, x := range ls {
		if x == l {
			return true
		}
	}
	return false
}

func (m *inspectorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.current = (m.current + 1) % len(m.locales)
			return m, nil

		case "shift+tab":
			m.current = (m.current + len(m.locales) - 1) % len(m.locales)
			return m, nil

		case "up", "down", "enter":
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % numFields
			m.inputs[m.focusIdx].Focus()
			return m, nil
		}
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *inspectorModel) View() string {
	loc := m.locales[m.current]
	var b strings.Builder

	b.WriteString(titleStyle.Render("libc inspector"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(fmt.Sprintf("%s  codeset %s  MB_CUR_MAX %d", loc.Name(), loc.Codeset(), loc.MaxLen())))
	b.WriteString("\n\n")

	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	text := []byte(m.inputs[fieldText].Value())
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("mbrtoc16"))
	b.WriteString("\n")
	b.WriteString(c16Steps(loc, text))
	b.WriteString(headerStyle.Render("mbrtoc32 / c32rtomb"))
	b.WriteString("\n")
	b.WriteString(c32Steps(loc, text))

	if num := m.inputs[fieldNumber].Value(); num != "" {
		b.WriteString(headerStyle.Render("strto*"))
		b.WriteString("\n")
		b.WriteString(parseSteps([]byte(num)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next locale • ↑/↓ switch field • esc quit"))
	return b.String()
}

// c16Steps decodes src one call at a time, the way a guest loop over
// mbrtoc16 would.
func c16Steps(loc *locale.Locale, src []byte) string {
	var (
		b    strings.Builder
		st   locale.State
		unit uint16
	)
	for i := 0; i < 64; i++ {
		if len(src) == 0 && st.IsInitial() {
			break
		}
		n, err := mbconv.BytesToC16(loc, &unit, src, &st)
		switch {
		case n == mbconv.Stored:
			fmt.Fprintf(&b, "  %-14s -> %s  (-3)\n", "", resultStyle.Render(fmt.Sprintf("%#04x", unit)))
			continue
		case n == mbconv.Incomplete:
			fmt.Fprintf(&b, "  % -14x -> %s\n", src, errorStyle.Render("incomplete (-2)"))
			return b.String()
		case err != nil:
			fmt.Fprintf(&b, "  % -14x -> %s\n", src[:1], errorStyle.Render(fmt.Sprintf("illegal (-1) %s", errno.Of(err).Name())))
			return b.String()
		case n == 0:
			return b.String()
		}
		fmt.Fprintf(&b, "  % -14x -> %s  (%d)\n", src[:n], resultStyle.Render(fmt.Sprintf("%#04x", unit)), n)
		src = src[n:]
	}
	return b.String()
}

func c32Steps(loc *locale.Locale, src []byte) string {
	var b strings.Builder
	cps, err := mbconv.DecodeString(loc, src)
	for _, cp := range cps {
		fmt.Fprintf(&b, "  U+%04X", cp)
	}
	if len(cps) > 0 {
		b.WriteString("\n")
	}
	if err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	out, err := mbconv.EncodeString(loc, cps)
	if err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  re-encoded: % x\n", out)

	// The same bytes through the locale's x/text encoding must agree.
	text, _, err := transform.String(loc.Encoding().NewDecoder(), string(out))
	if err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  as text:    %q\n", text)
	return b.String()
}

func parseSteps(src []byte) string {
	var b strings.Builder
	row := func(name string, value any, n int, code errno.Errno) {
		status := resultStyle.Render("ok")
		if code != 0 {
			status = errorStyle.Render(code.Name())
		}
		fmt.Fprintf(&b, "  %-9s %-22v end +%-3d %s\n", name, value, n, status)
	}
	o32 := intparse.ParseInt32(src, 0)
	row("strtol", o32.Value, o32.N, o32.Err)
	ou32 := intparse.ParseUint32(src, 0)
	row("strtoul", ou32.Value, ou32.N, ou32.Err)
	o64 := intparse.ParseInt64(src, 0)
	row("strtoll", o64.Value, o64.N, o64.Err)
	ou64 := intparse.ParseUint64(src, 0)
	row("strtoull", ou64.Value, ou64.N, ou64.Err)
	o8 := intparse.ParseInt8(src, 0)
	row("int8", o8.Value, o8.N, o8.Err)
	return b.String()
}

func runInteractive(localeName string) error {
	m, err := newInspectorModel(localeName)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
