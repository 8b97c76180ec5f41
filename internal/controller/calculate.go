package controller

import (
	"context"
	"fmt"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/render"
)

// Calculate submits the current form and renders the result. Failures alert
// the user and leave the previous result on screen.
func (c *Controller) Calculate(ctx context.Context) error {
	if err := c.calculate(ctx); err != nil {
		c.logf("error calculating: %v", err)
		c.notify.Alert(MsgCalculateFailed)
		return err
	}
	return nil
}

// AutoCalculate schedules a calculation after the quiet period, replacing any
// pending one. The form is read when the timer fires. Failures are only logged.
func (c *Controller) AutoCalculate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := c.nextSeqLocked()
	c.scheduler.Schedule(func() {
		if err := c.submit(context.Background(), seq); err != nil {
			c.logf("error auto-calculating: %v", err)
		}
	})
}

// Settle runs a pending auto-calculation right away and waits for it. When
// a calculation is already in flight, or its timer has just fired, it
// calculates again so that the latest form is on screen when Settle returns. Failures are logged and returned
// without alerting.
func (c *Controller) Settle(ctx context.Context) error {
	pending := c.scheduler.Cancel()

	c.mu.Lock()
	outstanding := c.shown < c.issued
	c.mu.Unlock()
	if !pending && !outstanding {
		return nil
	}

	if err := c.calculate(ctx); err != nil {
		c.logf("error auto-calculating: %v", err)
		return err
	}
	return nil
}

func (c *Controller) calculate(ctx context.Context) error {
	c.mu.Lock()
	seq := c.nextSeqLocked()
	c.mu.Unlock()
	return c.submit(ctx, seq)
}

// nextSeqLocked reserves a sequence number. Auto-calculations reserve theirs
// when scheduled, so a fired timer counts as outstanding before it collects
// the form.
func (c *Controller) nextSeqLocked() uint64 {
	c.issued++
	return c.issued
}

func (c *Controller) submit(ctx context.Context, seq uint64) error {
	c.mu.Lock()
	state := c.form.Collect(c.variant)
	c.mu.Unlock()

	result, err := c.api.Calculate(ctx, state)
	if err != nil {
		return err
	}
	return c.apply(seq, result)
}

// apply renders result unless a newer calculation has already been shown.
func (c *Controller) apply(seq uint64, result model.CalculationResult) error {
	html, err := render.ResultsHTML(result)
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.shown {
		c.logf("discarding stale calculation #%d (showing #%d)", seq, c.shown)
		return nil
	}
	c.shown = seq
	c.result = &result
	c.resultsHTML = html
	return nil
}
