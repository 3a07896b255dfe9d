// Package teatest drives bubbletea models in tests without a terminal.
//
// Update is called directly and returned Cmds are run synchronously. A Cmd
// that does not return within a short timeout (a spinner tick, a clock, a
// feed waiting on a store change) is parked instead of dropped; WaitFor
// keeps delivering parked results until the view shows what the test
// expects.
package teatest

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one Send may run.
const MaxDrainDepth = 100

// cmdTimeout separates immediate Cmds from ones that wait on a timer or a
// channel.
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous test harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.QuitMsg is seen.
	Quitting bool

	parked []<-chan tea.Msg
}

// New creates a Driver for model. Call DrainInit to run its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type Option func(*Driver)

// WithSize sends an initial WindowSizeMsg.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// DrainInit runs the model's Init command.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drainCmd(d.Model.Init(), 0)
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drainCmd(cmd, 0)
}

// PressKey sends a rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressEsc() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEsc})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

// View returns the model's rendered output.
func (d *Driver) View() string {
	return d.Model.View()
}

// Parked reports how many Cmds are still waiting for a result.
func (d *Driver) Parked() int {
	return len(d.parked)
}

// WaitFor delivers parked Cmd results until the view contains want or
// timeout passes. It reports whether want appeared.
func (d *Driver) WaitFor(want string, timeout time.Duration) bool {
	d.T.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(d.View(), want) {
			return true
		}
		if d.Quitting || time.Now().After(deadline) {
			return false
		}
		if !d.deliverParked() {
			time.Sleep(cmdTimeout)
		}
	}
}

// deliverParked feeds every parked result that is ready through Update and
// reports whether any was.
func (d *Driver) deliverParked() bool {
	d.T.Helper()
	var ready []tea.Msg
	still := d.parked[:0]
	for _, ch := range d.parked {
		select {
		case msg := <-ch:
			ready = append(ready, msg)
		default:
			still = append(still, ch)
		}
	}
	d.parked = still
	for _, msg := range ready {
		d.handle(msg, 0)
	}
	return len(ready) > 0
}

func (d *Driver) drainCmd(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest.Driver: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		d.handle(msg, depth)
	case <-time.After(cmdTimeout):
		d.parked = append(d.parked, ch)
	}
}

func (d *Driver) handle(msg tea.Msg, depth int) {
	d.T.Helper()
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drainCmd(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		d.Model, _ = d.Model.Update(msg)
		return
	}
	if d.Quitting {
		return
	}
	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drainCmd(next, depth+1)
}
