package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/costcalc/internal/form"
	"github.com/Simplici0/costcalc/internal/render"
)

// Save stores the current form under its name. An empty or default name is
// rejected before any request is made.
//
// The saved state always carries the ingredient inputs, whatever variant is
// used for calculation, so that Load can restore the ingredient controls.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	state := c.form.Collect(form.Separate)
	c.mu.Unlock()
	if err := ValidateName(state.Name); err != nil {
		c.notify.Alert(MsgNameRequired)
		return err
	}

	if err := c.api.SaveConfiguration(ctx, state); err != nil {
		c.logf("error saving: %v", err)
		c.notify.Alert(MsgSaveFailed)
		return err
	}
	c.notify.Alert(MsgSaved)
	return nil
}

// ValidateName rejects names a configuration cannot be saved under.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || name == form.DefaultName {
		return wrapValidation("configuration name is required")
	}
	return nil
}

// ShowSaved fetches the saved configurations and opens the listing.
func (c *Controller) ShowSaved(ctx context.Context) error {
	configs, err := c.api.ListConfigurations(ctx)
	if err == nil {
		var html string
		html, err = render.ConfigurationsHTML(configs, c.loc)
		if err == nil {
			c.mu.Lock()
			c.configs = configs
			c.configsHTML = html
			c.modalOpen = true
			c.mu.Unlock()
			return nil
		}
	}

	c.logf("error loading configurations: %v", err)
	c.notify.Alert(MsgListFailed)
	return err
}

// CloseModal hides the listing.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	c.modalOpen = false
	c.mu.Unlock()
}

// Load replaces the form with a saved configuration and closes the listing.
func (c *Controller) Load(ctx context.Context, id int64) error {
	cfg, err := c.api.GetConfiguration(ctx, id)
	if err != nil {
		c.logf("error loading configuration: %v", err)
		c.notify.Alert(MsgLoadFailed)
		return err
	}

	c.mu.Lock()
	c.form.Load(cfg)
	c.discardInFlightLocked()
	c.modalOpen = false
	c.mu.Unlock()

	c.notify.Alert(MsgLoaded)
	c.AutoCalculate()
	return nil
}

// Delete removes a saved configuration after confirmation and refreshes the listing.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if !c.notify.Confirm(MsgConfirmDelete) {
		return ErrCancelled
	}

	if err := c.api.DeleteConfiguration(ctx, id); err != nil {
		c.logf("error deleting configuration: %v", err)
		c.notify.Alert(MsgDeleteFailed)
		return err
	}
	c.notify.Alert(MsgDeleted)

	if err := c.ShowSaved(ctx); err != nil {
		return fmt.Errorf("refresh after delete: %w", err)
	}
	return nil
}
