// Package tray provides a system tray menu for picking an exercise and
// watching the rep count.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/formcoach/internal/exercise"
)

// Tray represents the system tray application.
type Tray struct {
	exercises []exercise.Info

	onSelect    func(t exercise.Type)
	onReset     func()
	onDashboard func()
	onQuit      func()
	current     exercise.Type
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuReps      *systray.MenuItem
	menuExercises map[exercise.Type]*systray.MenuItem
}

// New creates a new Tray offering the given exercises in order.
func New(exercises []exercise.Info) *Tray {
	return &Tray{
		exercises:     exercises,
		menuExercises: make(map[exercise.Type]*systray.MenuItem),
	}
}

// OnSelect sets the callback function to be called when an exercise is picked.
func (t *Tray) OnSelect(fn func(typ exercise.Type)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnReset sets the callback function to be called when the reset menu item is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnDashboard sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray menu, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("FormCoach")
	systray.SetTooltip("FormCoach rep counter")

	t.mu.Lock()
	t.menuReps = systray.AddMenuItem(repsLabel(0, 0), "Reps in the current set")
	t.menuReps.Disable()
	systray.AddSeparator()

	for _, info := range t.exercises {
		item := systray.AddMenuItemCheckbox(info.Name, "Track "+info.Name, info.Type == t.current)
		t.menuExercises[info.Type] = item
		go t.watchExercise(info.Type, item)
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuReset := systray.AddMenuItem("Reset Count", "Start a new set")
	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit FormCoach")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) watchExercise(typ exercise.Type, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleSelect(typ)
	}
}

// handleSelect handles a click on an exercise menu item.
func (t *Tray) handleSelect(typ exercise.Type) {
	t.SetExercise(typ)

	t.mu.RLock()
	callback := t.onSelect
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(typ)
	}
}

// handleReset handles the reset menu item click.
func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetExercise marks typ as the exercise being tracked.
func (t *Tray) SetExercise(typ exercise.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = typ
	for k, item := range t.menuExercises {
		if k == typ {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// Exercise returns the exercise being tracked.
func (t *Tray) Exercise() exercise.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// SetReps updates the rep display in the menu.
func (t *Tray) SetReps(count, target int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuReps != nil {
		t.menuReps.SetTitle(repsLabel(count, target))
	}
}

func repsLabel(count, target int) string {
	if target <= 0 {
		return fmt.Sprintf("Reps: %d", count)
	}
	return fmt.Sprintf("Reps: %d / %d", count, target)
}
