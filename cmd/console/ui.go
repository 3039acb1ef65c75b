package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/opengaia/gaia-engine/pkg/events"
	"github.com/opengaia/gaia-engine/pkg/state"
	"github.com/opengaia/gaia-engine/pkg/world"
)

const PlaceHolderText = "Type a reply, or 1-3 to pick a choice..."

// ConsoleUI is the BubbleTea model that runs the debug console.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	session      *state.Session
	bus          *events.Bus
	sub          <-chan events.Event
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Dialogue state for the character currently on screen.
	character  *world.Character
	choices    []choiceLine
	lastLine   string
	transcript []string

	// Character selection state
	showCharacterModal bool
	npcs               []world.Character
	selectedNPC        int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type choiceLine struct {
	index int
	text  string
	hint  int
}

type busEventMsg struct {
	event events.Event
	ok    bool
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	emotionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Italic(true)

	trustHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // green
	trustMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // yellow
	trustLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, session *state.Session, bus *events.Bus, sub <-chan events.Event) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	var npcs []world.Character
	if w := session.World(); w != nil {
		for _, c := range w.Characters {
			if !c.IsProtagonist() {
				npcs = append(npcs, c)
			}
		}
	}

	return ConsoleUI{
		config:             cfg,
		session:            session,
		bus:                bus,
		sub:                sub,
		textarea:           ta,
		chatViewport:       chatVp,
		metaViewport:       metaVp,
		ready:              false,
		showCharacterModal: true,
		npcs:               npcs,
		selectedNPC:        0,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the bus subscription and hands the next engine
// event to Update. It re-arms itself after every delivery.
func (m ConsoleUI) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.sub
		return busEventMsg{event: e, ok: ok}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Bus events are handled regardless of which modal is up, so a turn
	// that lands mid-modal is not lost.
	if bem, isBus := msg.(busEventMsg); isBus {
		return m.handleBusEvent(bem)
	}

	if m.showCharacterModal {
		return m.updateCharacterModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab:
			// Switch to another character.
			m.showCharacterModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.lastLine != "" {
				m.err = clipboard.WriteAll(m.lastLine)
				m.metaViewport.SetContent(m.writeMetadata())
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading || m.character == nil {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			index, text := m.resolveInput(input)
			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0

			m.transcript = append(m.transcript,
				userStyle.Render("You: ")+text)
			m.writeChatContent()

			m.bus.Publish(events.Event{
				Type:      events.TypePlayerChoice,
				SessionID: m.session.ID().String(),
				PlayerChoice: &events.PlayerChoice{
					CharacterID: m.character.ID,
					ChoiceIndex: index,
					ChoiceText:  text,
				},
			})
			return m, progressTick()
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// resolveInput maps a bare "1".."9" to the matching offered choice;
// anything else is free text.
func (m ConsoleUI) resolveInput(input string) (int, string) {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.choices) {
		c := m.choices[n-1]
		return c.index, c.text
	}
	return 0, input
}

func (m ConsoleUI) handleBusEvent(bem busEventMsg) (tea.Model, tea.Cmd) {
	if !bem.ok {
		return m, tea.Quit
	}

	e := bem.event
	switch e.Type {
	case events.TypeDialogueTurn:
		if e.TurnResult != nil {
			m.applyTurn(e.TurnResult)
		}

	case events.TypeDialogueAborted:
		m.loading = false
		m.transcript = append(m.transcript,
			errorStyle.Render("The conversation falters. Try again."))
		m.writeChatContent()

	case events.TypeTasksChanged:
		if e.TasksChanged != nil && len(e.TasksChanged.Newly) > 0 {
			for _, id := range e.TasksChanged.Newly {
				title := id
				if w := m.session.World(); w != nil {
					if t, ok := w.Task(id); ok {
						title = t.Title
					}
				}
				m.transcript = append(m.transcript,
					loadingStyle.Render("✓ Task complete: "+title))
			}
			m.writeChatContent()
		}
		m.metaViewport.SetContent(m.writeMetadata())
	}

	return m, m.waitForEvent()
}

func (m *ConsoleUI) applyTurn(result *events.TurnResult) {
	m.loading = false
	m.lastLine = result.Response.NPCResponse

	line := npcStyle.Render(result.CharacterName+": ") + result.Response.NPCResponse
	if result.Response.Emotion != "" {
		line += " " + emotionStyle.Render("["+titleCaser.String(result.Response.Emotion)+"]")
	}
	m.transcript = append(m.transcript, line)

	if result.Response.Blocked && result.Response.BlockedReason != "" {
		m.transcript = append(m.transcript,
			promptStyle.Render("("+result.Response.BlockedReason+")"))
	}

	m.choices = m.choices[:0]
	for _, c := range result.Response.PlayerChoices {
		m.choices = append(m.choices, choiceLine{index: c.Index, text: c.Text, hint: c.TrustHint})
	}

	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("OPEN GAIA CONSOLE") + "\n\n")
	if w := m.session.World(); w != nil {
		content.WriteString(w.Summary.Title + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, line := range m.transcript {
		content.WriteString(wordwrap.String(line, chatWidth) + "\n\n")
	}

	if len(m.choices) > 0 && !m.loading {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n")
		for i, c := range m.choices {
			hint := ""
			if c.hint != 0 {
				hint = promptStyle.Render(fmt.Sprintf(" (%+d)", c.hint))
			}
			content.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, c.text, hint))
		}
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(m.session.ID().String()[:8] + "...\n\n")

	if m.config.Offline {
		content.WriteString(loadingStyle.Render("offline mode") + "\n\n")
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if m.character != nil {
		content.WriteString("Talking to:\n")
		content.WriteString(m.character.Name + "\n\n")

		npcState, _ := m.session.NPCState(m.character.ID)
		content.WriteString(fmt.Sprintf("Trust: %d/100\n", npcState.TrustLevel))
		content.WriteString(renderTrustMeter(npcState.TrustLevel, m.character.TrustThreshold) + "\n")
		if npcState.IsConvinced {
			content.WriteString(trustHighStyle.Render("Convinced") + "\n")
		}
		content.WriteString("\n")
	}

	completed := m.session.CompletedTasks()
	content.WriteString(fmt.Sprintf("Completed (%d):\n", len(completed)))
	for _, id := range completed {
		title := id
		if w := m.session.World(); w != nil {
			if t, ok := w.Task(id); ok {
				title = t.Title
			}
		}
		content.WriteString("• " + title + "\n")
	}
	content.WriteString("\n")

	if m.character != nil {
		if resolver := m.session.Resolver(); resolver != nil {
			res := resolver.ForCharacter(m.character.ID, m.session.CompletedSet())
			if len(res.Active) > 0 {
				content.WriteString("Active here:\n")
				for _, t := range res.Active {
					content.WriteString("• " + t.Title + "\n")
				}
				content.WriteString("\n")
			}
			if len(res.Blocked) > 0 {
				content.WriteString("Blocked here:\n")
				for _, b := range res.Blocked {
					content.WriteString("• " + b.Task.Title + "\n")
				}
				content.WriteString("\n")
			}
		}
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• 1-3: Pick choice\n")
	content.WriteString("• Tab: Switch NPC\n")
	content.WriteString("• Ctrl+Y: Copy last line\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /tasks: Task overview\n")

	return content.String()
}

// renderTrustMeter draws a 20-cell bar with a threshold tick.
func renderTrustMeter(level, threshold int) string {
	const cells = 20
	filled := level * cells / 100
	tick := threshold * cells / 100

	style := trustLowStyle
	if level >= threshold {
		style = trustHighStyle
	} else if level >= threshold/2 {
		style = trustMidStyle
	}

	var bar strings.Builder
	for i := 0; i < cells; i++ {
		switch {
		case i == tick && level < threshold:
			bar.WriteString("┊")
		case i < filled:
			bar.WriteString("█")
		default:
			bar.WriteString("░")
		}
	}
	return style.Render(bar.String())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /tasks - Show all tasks and their state
• Tab - Switch character
• Ctrl+C - Quit

How to play:
• Talk NPCs into helping you; trust unlocks tasks
• Type 1-3 to pick an offered choice, or free text
`
		m.transcript = append(m.transcript, titleStyle.Render("Help:")+helpText)
		m.writeChatContent()

	case "/tasks":
		var tasksText strings.Builder
		tasksText.WriteString(titleStyle.Render("Tasks:") + "\n")
		if w := m.session.World(); w != nil {
			for _, t := range w.Tasks {
				marker := "○"
				if m.session.IsCompleted(t.ID) {
					marker = "●"
				}
				tasksText.WriteString(fmt.Sprintf("%s %s (%s)\n", marker, t.Title, t.Type))
			}
		}
		m.transcript = append(m.transcript, tasksText.String())
		m.writeChatContent()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) updateCharacterModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			m.showCharacterModal = false
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
		case tea.KeyDown:
			if m.selectedNPC < len(m.npcs)-1 {
				m.selectedNPC++
			}
		case tea.KeyEnter:
			if len(m.npcs) > 0 {
				c := m.npcs[m.selectedNPC]
				m.character = &c
				m.choices = nil
				m.transcript = append(m.transcript,
					promptStyle.Render("— You approach "+c.Name+" —"))
				m.showCharacterModal = false
				m.loading = true
				m.progressTick = 0
				m.ready = true
				m.writeChatContent()
				m.metaViewport.SetContent(m.writeMetadata())
				m.textarea.Focus()

				m.bus.Publish(events.Event{
					Type:      events.TypeNPCInteract,
					SessionID: m.session.ID().String(),
					Interact:  &events.Interact{CharacterID: c.ID},
				})
				return m, tea.Batch(textarea.Blink, progressTick())
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave the story where it stands?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCharacterModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Who do you approach?"))
	content.WriteString("\n\n")

	for i, c := range m.npcs {
		label := c.Name
		npcState, ok := m.session.NPCState(c.ID)
		if ok && npcState.IsConvinced {
			label += " ✓"
		} else if ok && npcState.TrustLevel > 0 {
			label += fmt.Sprintf(" (trust %d)", npcState.TrustLevel)
		}
		if i == m.selectedNPC {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
		} else {
			content.WriteString(modalItemStyle.Render("  " + label))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to quit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCharacterModal {
		return m.renderCharacterModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated waiting bar under the transcript.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
