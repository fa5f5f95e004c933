package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/filex"
)

type command struct {
	usage   string
	help    string
	minArgs int
	maxArgs int
	run     func(a *App, ctx context.Context, args []string) error
}

var commandOrder = []string{"ping", "scan", "self", "lookup", "save", "history", "latest", "breaches", "regen", "report"}

var commands = map[string]command{
	"ping":     {usage: "ping", help: "check the server", run: (*App).ping},
	"scan":     {usage: "scan <email>", help: "scan an address and save it to history", minArgs: 1, maxArgs: 1, run: (*App).scan},
	"self":     {usage: "self", help: "scan the address on your account", run: (*App).self},
	"lookup":   {usage: "lookup <email>", help: "quick lookup, once per day, not saved unless confirmed", minArgs: 1, maxArgs: 1, run: (*App).lookup},
	"save":     {usage: "save", help: "save the last unsaved quick lookup", run: (*App).save},
	"history":  {usage: "history", help: "list recent scans", run: (*App).history},
	"latest":   {usage: "latest", help: "show the most recent scan", run: (*App).latest},
	"breaches": {usage: "breaches [scanID]", help: "list breaches of a scan (latest by default)", maxArgs: 1, run: (*App).breaches},
	"regen":    {usage: "regen <scanID>", help: "regenerate the narrative for a scan", minArgs: 1, maxArgs: 1, run: (*App).regen},
	"report":   {usage: "report <scanID> [file]", help: "export a scan report, optionally downloading it to file", minArgs: 1, maxArgs: 2, run: (*App).report},
}

func (a *App) ping(ctx context.Context, _ []string) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}

func (a *App) scan(ctx context.Context, args []string) error {
	s, err := a.client.Scan(ctx, args[0])
	if err != nil {
		return err
	}
	a.printScan(s)
	return nil
}

func (a *App) self(ctx context.Context, _ []string) error {
	s, err := a.client.ScanSelf(ctx)
	if err != nil {
		return err
	}
	a.printScan(s)
	return nil
}

func (a *App) lookup(ctx context.Context, args []string) error {
	res, err := a.client.QuickLookup(ctx, args[0])
	if err != nil {
		return err
	}
	a.printResult(res)

	if err := a.lookups.Put(ctx, res, a.now()); err != nil {
		return err
	}

	if !Confirm(a.reader, "Save this lookup to your history?", a.out) {
		fmt.Fprintln(a.out, "Not saved. Run 'save' to keep it later.")
		return nil
	}
	return a.save(ctx, nil)
}

func (a *App) save(ctx context.Context, _ []string) error {
	p, err := a.lookups.Get(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintln(a.out, "No unsaved lookup")
		return nil
	}
	if err != nil {
		return err
	}

	s, err := a.client.SaveLookup(ctx, p.Result)
	if err != nil {
		return err
	}
	if err := a.lookups.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved as scan %s\n", s.ID)
	return nil
}

func (a *App) history(ctx context.Context, _ []string) error {
	scans, err := a.client.ListScans(ctx, 0)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Fprintln(a.out, "No scans yet")
		return nil
	}
	a.printHistory(scans)
	return nil
}

func (a *App) latest(ctx context.Context, _ []string) error {
	s, err := a.client.LatestScan(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintln(a.out, "No scans yet")
		return nil
	}
	if err != nil {
		return err
	}
	a.printScan(s)
	return nil
}

func (a *App) breaches(ctx context.Context, args []string) error {
	var scanID string
	if len(args) == 1 {
		scanID = args[0]
	}
	list, err := a.client.GetBreaches(ctx, scanID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No breaches")
		return nil
	}
	for _, b := range list {
		a.printBreach(&b.BreachRecord)
	}
	return nil
}

func (a *App) regen(ctx context.Context, args []string) error {
	s, err := a.client.RegenerateAnalysis(ctx, args[0])
	if err != nil {
		return err
	}
	var summary string
	if s.AISummary != nil {
		summary = *s.AISummary
	}
	a.printAnalysis(summary, s.AIRecommendations)
	return nil
}

func (a *App) report(ctx context.Context, args []string) error {
	exp, err := a.client.ExportReport(ctx, args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		fmt.Fprintf(a.out, "Report: %s\nDownload (expires %s):\n%s\n", exp.Key, exp.ExpiresAt.Local().Format(common.DisplayTimeLayout), exp.URL)
		return nil
	}

	body, err := a.fetch(ctx, exp.URL)
	if err != nil {
		return err
	}
	if err := filex.WriteFile(args[1], body); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Report %s written to %s\n", exp.Key, args[1])
	return nil
}
