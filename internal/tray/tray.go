// Package tray provides the system tray menu for the scanner.
package tray

import (
	"strings"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/holoscan/internal/scan"
)

// Tray is the system tray menu: a phase line, Restart Scan, Open in Browser
// and Quit.
type Tray struct {
	onRestart func()
	onOpen    func()
	onQuit    func()
	phase     scan.Phase
	mu        sync.RWMutex

	menuPhase *systray.MenuItem
}

// New creates a Tray showing Scanning.
func New() *Tray {
	return &Tray{phase: scan.Scanning}
}

// OnRestart sets the callback for the Restart Scan item.
func (t *Tray) OnRestart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRestart = fn
}

// OnOpen sets the callback for the Open in Browser item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the Quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Holoscan")
	systray.SetTooltip("Holoscan hand scanner")

	t.mu.Lock()
	t.menuPhase = systray.AddMenuItem(PhaseLabel(t.phase), "Current scan phase")
	t.menuPhase.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuRestart := systray.AddMenuItem("Restart Scan", "Start a new scan session")
	menuOpen := systray.AddMenuItem("Open in Browser", "Open the scanner page")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Holoscan")

	go func() {
		for {
			select {
			case <-menuRestart.ClickedCh:
				t.call(func() func() { return t.onRestart })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// call runs the callback picked under the read lock, outside of it.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	fn := pick()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// SetPhase updates the phase line.
func (t *Tray) SetPhase(p scan.Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = p
	if t.menuPhase != nil {
		t.menuPhase.SetTitle(PhaseLabel(p))
	}
}

// Phase returns the phase last shown.
func (t *Tray) Phase() scan.Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

// Hooks keeps the phase line in step with the session.
func (t *Tray) Hooks() scan.Hooks {
	return scan.Hooks{
		OnPhase:        func(_, to scan.Phase) { t.SetPhase(to) },
		OnSessionStart: func(string, time.Time) { t.SetPhase(scan.Scanning) },
	}
}

// PhaseLabel is the menu text for p, e.g. "● Reveal pending".
func PhaseLabel(p scan.Phase) string {
	words := strings.ReplaceAll(p.String(), "_", " ")
	return "● " + strings.ToUpper(words[:1]) + words[1:]
}
