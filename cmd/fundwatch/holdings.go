package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/fundwatch/internal/app"
	"github.com/bobmcallan/fundwatch/internal/models"
)

// openApp initializes the app or reports why it could not.
func openApp() (*app.App, bool) {
	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return nil, false
	}
	return a, true
}

type listCmd struct{}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list stored holdings" }
func (*listCmd) Usage() string {
	return `list

  Prints the stored holdings without fetching quotes.
`
}

func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	holdings, err := a.Store.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := renderHoldings(os.Stdout, holdings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type addCmd struct {
	code   string
	name   string
	shares float64
	cost   float64
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add or update a holding" }
func (*addCmd) Usage() string {
	return `add -code <code> -shares <shares> -cost <cost> [-name <name>]

  Adds the fund, or updates shares and cost when the code already exists.
  The stored name is only replaced when -name is given.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Fund code (required)")
	f.StringVar(&c.name, "name", "", "Display name")
	f.Float64Var(&c.shares, "shares", 0, "Number of shares held, > 0 (required)")
	f.Float64Var(&c.cost, "cost", 0, "Per-share cost basis, > 0 (required)")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	h := models.Holding{Code: c.code, Name: c.name, Shares: c.shares, Cost: c.cost}
	if err := h.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Store.Upsert(ctx, h); err != nil {
		if errors.Is(err, models.ErrInvalidHolding) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		fmt.Fprintf(os.Stderr, "Error saving holding: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Saved %s\n", h.Code)
	return subcommands.ExitSuccess
}

type removeCmd struct {
	code string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a holding" }
func (*removeCmd) Usage() string {
	return `remove -code <code>

  Removes the fund with the given code. Removing an absent code is not an error.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Fund code (required)")
}

func (c *removeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.code == "" {
		fmt.Fprintln(os.Stderr, "Error: -code is required")
		return subcommands.ExitUsageError
	}

	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Store.Delete(ctx, c.code); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing holding: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Removed %s\n", c.code)
	return subcommands.ExitSuccess
}

type valueCmd struct{}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "value holdings with realtime quotes" }
func (*valueCmd) Usage() string {
	return `value

  Resolves a quote for every holding and prints the valuation table and totals.
`
}

func (*valueCmd) SetFlags(*flag.FlagSet) {}

func (*valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, ok := openApp()
	if !ok {
		return subcommands.ExitFailure
	}
	defer a.Close()

	v, err := a.Valuate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := renderValuation(os.Stdout, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
