package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Simplici0/costcalc/internal/apiclient"
	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/controller"
	"github.com/Simplici0/costcalc/internal/form"
	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/render"
)

const usage = `usage: costctl [-api URL] [-timeout D] [-variant aggregated|separate] <command> [flags]

commands:
  new                      calculate the default form
  calculate -f form.json   calculate a form read from a JSON file
  save -f form.json        save a form read from a JSON file
  list                     list saved configurations
  load <id>                load a configuration and show its rows and result
  delete [-yes] <id>       delete a configuration
  export [-o file] <id>    download a configuration as xlsx
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("costctl: ")

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, config.Load()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// app carries what every command needs.
type app struct {
	api     *apiclient.Client
	variant form.Variant
	delay   time.Duration
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, cfg config.Config) error {
	global := flag.NewFlagSet("costctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := global.String("api", cfg.APIBaseURL, "calculation service base URL")
	timeout := global.Duration("timeout", cfg.HTTPTimeout, "HTTP request timeout")
	variantName := global.String("variant", form.Aggregated.String(), "how ingredients are submitted: aggregated or separate")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}
	variant, err := form.ParseVariant(*variantName)
	if err != nil {
		return err
	}

	a := &app{
		api:     apiclient.New(*baseURL, apiclient.NewHTTPClient(*timeout)),
		variant: variant,
		delay:   cfg.AutoCalcDelay,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "new":
		return a.newForm(ctx, rest)
	case "calculate":
		return a.calculate(ctx, rest)
	case "save":
		return a.save(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "load":
		return a.load(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) newForm(ctx context.Context, args []string) error {
	fs := a.flagSet("new")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.controller(false)
	defer c.Close()
	c.Start()
	if err := c.Settle(ctx); err != nil {
		return err
	}
	return a.printForm(c.View())
}

func (a *app) calculate(ctx context.Context, args []string) error {
	fs := a.flagSet("calculate")
	path := fs.String("f", "", "form JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	state, err := readFormState(*path)
	if err != nil {
		return err
	}

	result, err := a.api.Calculate(ctx, state)
	if err != nil {
		return err
	}
	printResult(a.stdout, result)
	return nil
}

func (a *app) save(ctx context.Context, args []string) error {
	fs := a.flagSet("save")
	path := fs.String("f", "", "form JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	state, err := readFormState(*path)
	if err != nil {
		return err
	}
	if err := controller.ValidateName(state.Name); err != nil {
		return fmt.Errorf("%s: %w", controller.MsgNameRequired, err)
	}

	if err := a.api.SaveConfiguration(ctx, state); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, controller.MsgSaved)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := a.controller(false)
	defer c.Close()
	if err := c.ShowSaved(ctx); err != nil {
		return err
	}

	listing := render.Configurations(c.View().Configurations, time.Local)
	if len(listing.Items) == 0 {
		fmt.Fprintln(a.stdout, listing.EmptyMessage)
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tНазвание\tСоздана\tКоличество\tЦена")
	for _, item := range listing.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", item.ID, item.Name, item.CreatedAt, item.BatchSize, item.SellingPrice)
	}
	return tw.Flush()
}

func (a *app) load(ctx context.Context, args []string) error {
	fs := a.flagSet("load")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs)
	if err != nil {
		return err
	}

	c := a.controller(false)
	defer c.Close()
	if err := c.Load(ctx, id); err != nil {
		return err
	}
	if err := c.Settle(ctx); err != nil {
		return err
	}
	return a.printForm(c.View())
}

func (a *app) printForm(view controller.View) error {
	name := view.Name
	if name == "" {
		name = form.DefaultName
	}
	fmt.Fprintf(a.stdout, "%s: %s шт. по %s л, объем партии %s\n", name, view.BatchSize, view.ContainerVolume, view.Form.TotalVolume)
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, ctl := range view.Form.Ingredients {
		if ctl.Enabled {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ctl.Ingredient.Title(), ctl.Needed, ctl.Cost)
		}
	}
	for _, cat := range model.Categories {
		for _, row := range view.Form.Rows[cat] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", cat.Title(), row.Name, row.Price, row.Quantity, row.Total)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if view.Result != nil {
		fmt.Fprintln(a.stdout)
		printResult(a.stdout, *view.Result)
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs)
	if err != nil {
		return err
	}

	c := a.controller(*yes)
	defer c.Close()
	return c.Delete(ctx, id)
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	out := fs.String("o", "", "output file (default configuration-<id>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := parseID(fs)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = fmt.Sprintf("configuration-%d.xlsx", id)
	}

	data, err := a.api.ExportConfiguration(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintln(a.stdout, *out)
	return nil
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// controller returns a controller for one command. Commands that show a
// result call Settle instead of waiting out the auto-calculation delay.
func (a *app) controller(assumeYes bool) *controller.Controller {
	n := &terminalNotifier{in: bufio.NewReader(a.stdin), out: a.stderr, assumeYes: assumeYes}
	return controller.New(a.api, n, controller.Options{
		Variant: a.variant,
		Delay:   a.delay,
		Logger:  log.New(a.stderr, "costctl: ", 0),
	})
}

// terminalNotifier prints alerts and asks for confirmation on stdin.
type terminalNotifier struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (n *terminalNotifier) Alert(msg string) {
	fmt.Fprintln(n.out, msg)
}

func (n *terminalNotifier) Confirm(msg string) bool {
	if n.assumeYes {
		return true
	}
	fmt.Fprintf(n.out, "%s [y/N] ", msg)
	line, err := n.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

func readFormState(path string) (model.FormState, error) {
	if path == "" {
		return model.FormState{}, errors.New("-f is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormState{}, fmt.Errorf("read form: %w", err)
	}
	var state model.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.FormState{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return state, nil
}

func parseID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, fmt.Errorf("%s: expected exactly one configuration id", fs.Name())
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: invalid configuration id %q", fs.Name(), fs.Arg(0))
	}
	return id, nil
}

func printResult(w io.Writer, r model.CalculationResult) {
	view := render.Results(r)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Себестоимость партии\t%s\n", view.TotalCost)
	fmt.Fprintf(tw, "Себестоимость единицы\t%s\n", view.UnitCost)
	fmt.Fprintf(tw, "Цена продажи\t%s\n", view.SellingPrice)
	fmt.Fprintf(tw, "Прибыль с единицы\t%s\n", view.ProfitPerUnit)
	fmt.Fprintf(tw, "Маржа\t%s\n", view.Margin)
	fmt.Fprintf(tw, "Прибыль с партии (%d шт.)\t%s\n", view.BatchSize, view.BatchProfit)
	for _, row := range view.Categories {
		fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
	}
	tw.Flush()
}
