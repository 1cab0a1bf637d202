package mpv

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tubeplay-cli/tubeplay/engine"
	"github.com/tubeplay-cli/tubeplay/log"
)

// listener watches mpv property changes over a persistent IPC connection and
// translates them into typed engine events.
type listener struct {
	engine *Engine

	conn      net.Conn
	stopCh    chan struct{}
	done      chan struct{}
	mu        sync.Mutex
	listening bool
}

func newListener(e *Engine) *listener {
	return &listener{
		engine: e,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// start subscribes to the observed properties and spawns the read loop.
func (l *listener) start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening {
		return nil
	}

	properties := []struct {
		id   int
		name string
	}{
		{1, "time-pos"},
		{2, "pause"},
		{3, "paused-for-cache"},
		{4, "eof-reached"},
		{5, "speed"},
		{6, "sub-visibility"},
	}

	for _, prop := range properties {
		_, err := sendCommand(l.engine.socketPath, []interface{}{"observe_property", prop.id, prop.name})
		if err != nil {
			return fmt.Errorf("observe %s: %w", prop.name, err)
		}
	}

	conn, err := net.Dial("unix", l.engine.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	l.conn = conn
	l.listening = true

	go l.readLoop()

	log.Infof("mpv event listener started on %s", l.engine.socketPath)
	return nil
}

// stop terminates the listener and waits for the read loop to return, so no
// event can be emitted after stop.
func (l *listener) stop() {
	l.mu.Lock()
	if !l.listening {
		l.mu.Unlock()
		return
	}

	close(l.stopCh)
	if l.conn != nil {
		l.conn.Close()
	}
	l.listening = false
	l.mu.Unlock()

	<-l.done
}

// readLoop continuously reads newline-delimited JSON events from mpv.
func (l *listener) readLoop() {
	defer func() {
		l.mu.Lock()
		l.listening = false
		l.mu.Unlock()
		close(l.done)
	}()

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		if err := l.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := l.conn.Read(buf)
		if err != nil {
			if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline") {
				continue
			}
			log.Warnf("event listener read error: %v", err)
			return
		}

		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 && !strings.HasSuffix(string(data), "\n") {
				remainder = []byte(line)
				continue
			}

			l.processEvent(line)
		}
	}
}

// processEvent parses one event line and emits the matching typed event.
func (l *listener) processEvent(line string) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return
	}

	eventType, ok := event["event"].(string)
	if !ok {
		return
	}

	switch eventType {
	case "property-change":
		name, _ := event["name"].(string)
		l.propertyChanged(name, event["data"])
	case "file-loaded":
		l.engine.emit(engine.LoadedEvent{})
	case "end-file":
		if reason, _ := event["reason"].(string); reason == "error" {
			message, _ := event["file_error"].(string)
			l.engine.emit(engine.ErrorEvent{Err: &engine.Error{
				Category: engine.CategoryMedia,
				Message:  message,
			}})
		}
	}
}

func (l *listener) propertyChanged(name string, data interface{}) {
	switch name {
	case "time-pos":
		if pos, ok := data.(float64); ok {
			l.engine.emit(engine.TimeUpdateEvent{Time: pos})
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			if paused {
				l.engine.emit(engine.PauseEvent{})
			} else {
				l.engine.emit(engine.PlayEvent{})
			}
		}
	case "paused-for-cache":
		if buffering, ok := data.(bool); ok {
			l.engine.emit(engine.BufferingEvent{Buffering: buffering})
		}
	case "eof-reached":
		if ended, ok := data.(bool); ok && ended {
			l.engine.emit(engine.EndedEvent{})
		}
	case "speed":
		if rate, ok := data.(float64); ok {
			l.engine.emit(engine.RateChangeEvent{Rate: rate})
		}
	case "sub-visibility":
		if visible, ok := data.(bool); ok {
			l.engine.emit(engine.TextVisibilityEvent{Visible: visible})
		}
	}
}
