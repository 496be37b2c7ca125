package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/sheet-countdown/internal/configstore"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
)

const (
	DefaultRefreshInterval    = 5 * time.Minute
	DefaultRevealDelay        = 10 * time.Millisecond
	DefaultTransitionDuration = 300 * time.Millisecond
)

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Options configures a Controller. Fetcher and Store are required.
type Options struct {
	Fetcher            Fetcher
	Store              configstore.Store
	EditURL            string
	RefreshInterval    time.Duration
	RevealDelay        time.Duration
	TransitionDuration time.Duration
	Now                func() time.Time
	Scheduler          Scheduler
}

// View is a point-in-time copy of everything a surface needs to draw the widget.
type View struct {
	Render
	State       ViewState `json:"state"`
	Display     Panel     `json:"display"`
	Config      Panel     `json:"config"`
	ToggleGlyph string    `json:"toggle_glyph"`
	Selector    int       `json:"selector"`
	Notice      string    `json:"notice,omitempty"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Loaded      bool      `json:"loaded"`
}

// Controller is safe for concurrent use.
type Controller struct {
	opts Options

	mu         sync.Mutex
	view       View
	started    uint64 // last refresh generation handed out
	applied    uint64 // generation currently on screen
	transition uint64 // invalidates pending steps of an interrupted transition
	runCtx     context.Context
	stopped    bool // Run is shutting down; no new background cycles
	listeners  []func(View)

	wg sync.WaitGroup
}

// New creates a Controller in the display state.
func New(opts Options) (*Controller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("widget: fetcher is required")
	}
	if opts.Store == nil {
		return nil, errors.New("widget: store is required")
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	if opts.TransitionDuration <= 0 {
		opts.TransitionDuration = DefaultTransitionDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timerScheduler{}
	}

	row := opts.Store.Get()
	return &Controller{
		opts: opts,
		view: View{
			Render:      Render{Row: row, Title: "Cargando..."},
			State:       StateDisplay,
			Display:     Panel{Visible: true},
			Config:      Panel{Hidden: true},
			ToggleGlyph: GlyphClosed,
			Selector:    row,
		},
		runCtx: context.Background(),
	}, nil
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// OnChange registers fn to be called with the new view after every change.
// Callbacks run outside the controller lock.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// update applies mutate under the lock and notifies listeners.
func (c *Controller) update(mutate func(v *View) bool) {
	c.mu.Lock()
	if !mutate(&c.view) {
		c.mu.Unlock()
		return
	}
	v := c.view
	listeners := append([]func(View){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// Run refreshes immediately and then on every refresh interval until ctx is
// canceled. A slow cycle does not delay the next one. Run waits for cycles
// in flight before returning.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.runCtx = ctx
	c.stopped = false
	c.mu.Unlock()

	logger.Info("Widget refresh loop started", logger.Fields{
		"interval": c.opts.RefreshInterval.String(),
	})

	c.refreshAsync(ctx)

	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.stopped = true
			c.mu.Unlock()
			c.wg.Wait()
			logger.Info("Widget refresh loop stopped", nil)
			return nil
		case <-ticker.C:
			c.refreshAsync(ctx)
		}
	}
}

// refreshAsync starts a cycle in the background unless Run has stopped.
func (c *Controller) refreshAsync(ctx context.Context) {
	c.mu.Lock()
	if c.stopped || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.Refresh(ctx)
	}()
}

// Refresh runs one cycle for the stored row and publishes it unless a newer
// cycle has already been published or ctx was canceled meanwhile.
func (c *Controller) Refresh(ctx context.Context) View {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.mu.Unlock()

	row := c.opts.Store.Get()
	cycleID := uuid.NewString()
	logger.Debug("Refresh cycle started", logger.Fields{
		"cycle_id":   cycleID,
		"generation": gen,
		"row":        row,
	})

	start := time.Now()
	r := RunCycle(ctx, c.opts.Fetcher, row, c.opts.Now())
	logger.RecordTiming("refresh", time.Since(start))

	if ctx.Err() != nil {
		logger.Debug("Refresh cycle abandoned", logger.Fields{"cycle_id": cycleID})
		return c.Snapshot()
	}

	applied := false
	c.update(func(v *View) bool {
		if gen < c.applied {
			return false
		}
		c.applied = gen
		applied = true

		v.Render = r
		v.Error = ""
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		v.UpdatedAt = c.opts.Now()
		v.Loaded = true
		return true
	})

	switch {
	case !applied:
		logger.IncrCounter("refresh.stale_discarded")
		logger.Warn("Discarded stale refresh result", logger.Fields{
			"cycle_id":   cycleID,
			"generation": gen,
		})
	case r.Err != nil:
		logger.IncrCounter("refresh.failure")
	default:
		logger.IncrCounter("refresh.success")
		logger.SetGauge("row", float64(row))
		logger.Info("Refresh cycle applied", logger.Fields{
			"cycle_id": cycleID,
			"row":      row,
			"title":    r.Title,
			"label":    r.Label,
		})
	}

	return c.Snapshot()
}

// Toggle switches between the display and configuration views.
func (c *Controller) Toggle() error {
	return c.fire(TriggerToggle, nil)
}

// Save persists row, acknowledges it and returns to the display view.
// The returned notice is the confirmation to show the user. The state
// check and the write happen as one step, so a save either lands together
// with its transition or not at all.
func (c *Controller) Save(row int) (string, error) {
	notice := fmt.Sprintf("Configuración guardada: fila %d", row)

	err := c.fire(TriggerSave, func(v *View) error {
		if err := c.opts.Store.Set(row); err != nil {
			return fmt.Errorf("saving row: %w", err)
		}
		v.Notice = notice
		v.Selector = row
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info("Row saved", logger.Fields{"row": row})
	return notice, nil
}

// OpenSheet returns the URL where the spreadsheet can be edited. The view
// state is not touched.
func (c *Controller) OpenSheet() (string, error) {
	if c.opts.EditURL == "" {
		return "", errors.New("no spreadsheet edit URL configured")
	}
	logger.Debug("Opening spreadsheet", logger.Fields{"url": c.opts.EditURL})
	return c.opts.EditURL, nil
}

// DismissNotice clears the save confirmation once a surface has shown it.
func (c *Controller) DismissNotice() {
	c.update(func(v *View) bool {
		if v.Notice == "" {
			return false
		}
		v.Notice = ""
		return true
	})
}

// StoreChanged reacts to the stored row being changed outside this
// controller, such as by another process.
func (c *Controller) StoreChanged(row int) {
	c.update(func(v *View) bool {
		if v.State == StateConfiguration {
			return false
		}
		v.Selector = row
		return true
	})
	c.refreshAsync(c.context())
}

func (c *Controller) context() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCtx
}

// fire moves the state machine along t and starts the entry sequence of the
// target state. apply, when set, runs under the same lock once t is known to
// be accepted; if it fails the state is left unchanged.
func (c *Controller) fire(t Trigger, apply func(v *View) error) error {
	var to ViewState
	var token uint64
	var err error

	c.update(func(v *View) bool {
		to, err = next(v.State, t)
		if err != nil {
			return false
		}
		if apply != nil {
			if err = apply(v); err != nil {
				return false
			}
		}
		c.transition++
		token = c.transition
		v.State = to

		// Step 1: lay out the incoming panel, still faded out.
		switch to {
		case StateConfiguration:
			v.Config.Visible = true
			v.Selector = c.opts.Store.Get()
		case StateDisplay:
			v.Display.Visible = true
		}
		return true
	})
	if err != nil {
		return err
	}

	logger.Debug("View transition", logger.Fields{"trigger": string(t), "to": to.String()})

	if to == StateDisplay {
		c.refreshAsync(c.context())
	}

	c.opts.Scheduler.AfterFunc(c.opts.RevealDelay, func() {
		if !c.revealStep(token, to) {
			return
		}
		c.opts.Scheduler.AfterFunc(c.opts.TransitionDuration, func() {
			c.settleStep(token, to)
		})
	})
	return nil
}

// revealStep fades the incoming panel in and the outgoing panel out.
func (c *Controller) revealStep(token uint64, to ViewState) bool {
	current := false
	c.update(func(v *View) bool {
		if token != c.transition {
			return false
		}
		current = true
		in, out := c.panels(v, to)
		in.Hidden = false
		out.Hidden = true
		return true
	})
	return current
}

// settleStep removes the outgoing panel and relabels the toggle.
func (c *Controller) settleStep(token uint64, to ViewState) {
	c.update(func(v *View) bool {
		if token != c.transition {
			return false
		}
		_, out := c.panels(v, to)
		out.Visible = false
		if to == StateConfiguration {
			v.ToggleGlyph = GlyphOpen
		} else {
			v.ToggleGlyph = GlyphClosed
		}
		return true
	})
}

// panels returns the incoming and outgoing panels for a transition into to.
func (c *Controller) panels(v *View, to ViewState) (in, out *Panel) {
	if to == StateConfiguration {
		return &v.Config, &v.Display
	}
	return &v.Display, &v.Config
}
