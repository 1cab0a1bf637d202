package session

import (
	"sync"
	"time"

	"github.com/tubeplay-cli/tubeplay/icon"
)

// popupDuration is how long a value-change popup stays visible; showing a
// new value restarts the countdown.
const popupDuration = 2 * time.Second

// ValueChange is the transient popup shown after a volume, rate or mute
// adjustment.
type ValueChange struct {
	Message string
	Icon    icon.Icon
	HasIcon bool
}

type popup struct {
	mu      sync.Mutex
	current ValueChange
	visible bool
	timer   *time.Timer

	// onExpire, when set, fires after the popup hides. Called from a timer
	// goroutine.
	onExpire func()
}

func (p *popup) show(message string, ic icon.Icon, hasIcon bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = ValueChange{Message: message, Icon: ic, HasIcon: hasIcon}
	p.visible = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(popupDuration, func() {
		p.mu.Lock()
		p.visible = false
		callback := p.onExpire
		p.mu.Unlock()

		if callback != nil {
			callback()
		}
	})
}

func (p *popup) get() (ValueChange, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.visible
}

func (p *popup) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.visible = false
}
