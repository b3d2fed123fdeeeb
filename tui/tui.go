package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/pl0lang/pl0c/code"
	"github.com/pl0lang/pl0c/vm"
)

// TUI is the interactive step-debugger: it owns one vm.VM and lets the
// user single-step, continue to the next breakpoint, and inspect
// registers and the data stack between steps.
type TUI struct {
	App         *tview.Application
	VM          *vm.VM
	Stream      *code.Stream
	Breakpoints *BreakpointManager

	CodeView     *tview.TextView
	RegisterView *tview.TextView
	StackView    *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField

	Layout *tview.Flex
}

// New wires a TUI around an already-constructed VM and its source
// instruction stream (used to render the code panel).
func New(m *vm.VM, stream *code.Stream) *TUI {
	t := &TUI{
		App:         tview.NewApplication(),
		VM:          m,
		Stream:      stream,
		Breakpoints: NewBreakpointManager(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.refresh()
	return t
}

func (t *TUI) initializeViews() {
	t.CodeView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.CodeView.SetBorder(true).SetTitle(" Code ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetBorder(true).SetTitle(" Command (step/continue/break N/quit) ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.CodeView, 0, 3, false).
		AddItem(t.OutputView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 8, 0, false).
		AddItem(t.StackView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(left, 0, 2, false).
		AddItem(right, 0, 1, false)

	t.Layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.Layout.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.step()
			return nil
		case tcell.KeyF6:
			t.continueRun()
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

// Run starts the tview event loop. It blocks until the user quits.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.Layout, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := strings.TrimSpace(t.CommandInput.GetText())
	t.CommandInput.SetText("")

	switch {
	case cmd == "step" || cmd == "s":
		t.step()
	case cmd == "continue" || cmd == "c":
		t.continueRun()
	case strings.HasPrefix(cmd, "break "):
		if addr, err := strconv.Atoi(strings.TrimSpace(cmd[len("break "):])); err == nil {
			t.Breakpoints.Add(addr)
		}
	case cmd == "quit" || cmd == "q":
		t.App.Stop()
	}
	t.refresh()
}

func (t *TUI) step() {
	if t.VM.State != vm.StateRunning {
		return
	}
	_ = t.VM.Step()
}

func (t *TUI) continueRun() {
	for t.VM.State == vm.StateRunning {
		if err := t.VM.Step(); err != nil {
			break
		}
		if t.Breakpoints.Has(t.VM.PC) {
			break
		}
	}
}

func (t *TUI) refresh() {
	t.renderCode()
	t.renderRegisters()
	t.renderStack()
}

func (t *TUI) renderCode() {
	var b strings.Builder
	for i, ins := range t.Stream.All() {
		marker := "  "
		if i == t.VM.PC {
			marker = "->"
		}
		if t.Breakpoints.Has(i) {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s %3d %s\n", marker, i, ins)
	}
	t.CodeView.SetText(b.String())
}

func (t *TUI) renderRegisters() {
	var b strings.Builder
	fmt.Fprintf(&b, "pc=%d bp=%d sp=%d state=%s\n", t.VM.PC, t.VM.BP, t.VM.SP, t.VM.State)
	for i, r := range t.VM.R {
		fmt.Fprintf(&b, "R%d=%d ", i, r)
	}
	t.RegisterView.SetText(b.String())
}

func (t *TUI) renderStack() {
	var b strings.Builder
	for i := 1; i <= t.VM.SP; i++ {
		fmt.Fprintf(&b, "%3d: %d\n", i, t.VM.Data[i])
	}
	t.StackView.SetText(b.String())
}
