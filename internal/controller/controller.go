// Package controller binds user events to the form view-model, the local
// calculator, the debounced remote calculation and the configuration API.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Simplici0/costcalc/internal/debounce"
	"github.com/Simplici0/costcalc/internal/form"
	"github.com/Simplici0/costcalc/internal/model"
)

// User-facing messages.
const (
	MsgCalculateFailed = "Ошибка при расчете"
	MsgNameRequired    = "Пожалуйста, введите название конфигурации"
	MsgSaved           = "Конфигурация сохранена успешно!"
	MsgSaveFailed      = "Ошибка при сохранении"
	MsgListFailed      = "Ошибка при загрузке конфигураций"
	MsgLoaded          = "Конфигурация загружена!"
	MsgLoadFailed      = "Ошибка при загрузке конфигурации"
	MsgConfirmDelete   = "Вы уверены, что хотите удалить эту конфигурацию?"
	MsgDeleted         = "Конфигурация удалена"
	MsgDeleteFailed    = "Ошибка при удалении"
	MsgConfirmReset    = "Вы уверены, что хотите сбросить все данные?"
)

var (
	// ErrValidation is returned when an action is blocked before any request.
	ErrValidation = errors.New("validation failed")
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled by user")
)

// Notifier shows blocking messages to the user.
type Notifier interface {
	Alert(msg string)
	Confirm(msg string) bool
}

// API is the remote calculation and configuration service.
type API interface {
	Calculate(ctx context.Context, state model.FormState) (model.CalculationResult, error)
	SaveConfiguration(ctx context.Context, state model.FormState) error
	ListConfigurations(ctx context.Context) ([]model.SavedConfiguration, error)
	GetConfiguration(ctx context.Context, id int64) (model.SavedConfiguration, error)
	DeleteConfiguration(ctx context.Context, id int64) error
}

// Options tunes a Controller.
type Options struct {
	Variant form.Variant
	// Delay is the auto-calculation quiet period; 0 means 300ms.
	Delay time.Duration
	// Location is used for creation times in the listing; nil means time.Local.
	Location *time.Location
	Logger   *log.Logger
}

// Controller owns the form and serializes every user event on its lock,
// the way a browser serializes events on its main thread. Network calls are
// made without holding the lock.
type Controller struct {
	api       API
	notify    Notifier
	logger    *log.Logger
	scheduler *debounce.Scheduler
	variant   form.Variant
	loc       *time.Location

	mu          sync.Mutex
	form        *form.Form
	issued      uint64
	shown       uint64
	result      *model.CalculationResult
	resultsHTML string
	configs     []model.SavedConfiguration
	configsHTML string
	modalOpen   bool
}

// New returns a controller over a fresh form.
func New(api API, notify Notifier, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		api:       api,
		notify:    notify,
		logger:    logger,
		scheduler: debounce.New(opts.Delay),
		variant:   opts.Variant,
		loc:       loc,
		form:      form.New(),
	}
}

// Start performs the initial recompute and schedules the first calculation.
func (c *Controller) Start() {
	c.mu.Lock()
	c.form.RecomputeAll()
	c.mu.Unlock()
	c.AutoCalculate()
}

// Close drops any pending auto-calculation.
func (c *Controller) Close() {
	c.scheduler.Cancel()
}

// SetField handles input in one of the core fields. Volume-related fields
// refresh the batch volume and ingredient totals and trigger auto-calculation.
func (c *Controller) SetField(field form.Field, value string) error {
	c.mu.Lock()
	if err := c.form.SetField(field, value); err != nil {
		c.mu.Unlock()
		return err
	}
	if field == form.FieldName {
		c.mu.Unlock()
		return nil
	}
	c.form.UpdateTotalVolume()
	c.form.CalculateIngredients()
	c.mu.Unlock()

	c.AutoCalculate()
	return nil
}

// SetRowField handles input in a line-item row.
func (c *Controller) SetRowField(cat model.Category, id form.RowID, field form.Field, value string) error {
	c.mu.Lock()
	err := c.form.SetRowField(cat, id, field, value)
	if err == nil {
		err = c.form.UpdateRowTotal(cat, id)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.AutoCalculate()
	return nil
}

// SetIngredientField handles input in an ingredient's dose, price or package size.
func (c *Controller) SetIngredientField(ing model.Ingredient, field form.Field, value string) error {
	c.mu.Lock()
	err := c.form.SetIngredientField(ing, field, value)
	if err == nil {
		c.form.CalculateIngredients()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.AutoCalculate()
	return nil
}

// SetIngredientEnabled handles the ingredient checkbox.
func (c *Controller) SetIngredientEnabled(ing model.Ingredient, enabled bool) error {
	c.mu.Lock()
	err := c.form.SetIngredientEnabled(ing, enabled)
	if err == nil {
		c.form.CalculateIngredients()
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.AutoCalculate()
	return nil
}

// AddRow appends an empty row to a category.
func (c *Controller) AddRow(cat model.Category) (form.RowID, error) {
	c.mu.Lock()
	id, err := c.form.AddRow(cat)
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}

	c.AutoCalculate()
	return id, nil
}

// RemoveRow deletes a row.
func (c *Controller) RemoveRow(cat model.Category, id form.RowID) error {
	c.mu.Lock()
	err := c.form.RemoveRow(cat, id)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.AutoCalculate()
	return nil
}

// Reset restores the default form after confirmation.
func (c *Controller) Reset() error {
	if !c.notify.Confirm(MsgConfirmReset) {
		return ErrCancelled
	}
	c.scheduler.Cancel()

	c.mu.Lock()
	c.form.Reset()
	c.discardInFlightLocked()
	c.result = nil
	c.resultsHTML = ""
	c.mu.Unlock()

	c.AutoCalculate()
	return nil
}

// discardInFlightLocked makes every calculation issued so far stale, so a
// response that arrives after the form was replaced is not rendered.
func (c *Controller) discardInFlightLocked() {
	c.issued++
	c.shown = c.issued
}

// Collect returns the state that would be submitted right now.
func (c *Controller) Collect() model.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Collect(c.variant)
}

// View is a consistent copy of everything on screen.
type View struct {
	Name            string
	BatchSize       string
	SellingPrice    string
	ContainerVolume string
	Form            form.Snapshot
	Result          *model.CalculationResult
	ResultsHTML     string
	Configurations  []model.SavedConfiguration
	ConfigsHTML     string
	ModalOpen       bool
}

// View returns the current screen state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Name:            c.form.Name,
		BatchSize:       c.form.BatchSize,
		SellingPrice:    c.form.SellingPrice,
		ContainerVolume: c.form.ContainerVolume,
		Form:            c.form.Snapshot(),
		ResultsHTML:     c.resultsHTML,
		Configurations:  append([]model.SavedConfiguration(nil), c.configs...),
		ConfigsHTML:     c.configsHTML,
		ModalOpen:       c.modalOpen,
	}
	if c.result != nil {
		r := *c.result
		v.Result = &r
	}
	return v
}

// Rows returns the rows of a category.
func (c *Controller) Rows(cat model.Category) []form.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Rows(cat)
}

func (c *Controller) logf(format string, args ...any) {
	c.logger.Printf(format, args...)
}

func wrapValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
