package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/client/client"
	"github.com/dmitrijs2005/darktrack/internal/client/config"
	"github.com/dmitrijs2005/darktrack/internal/client/repositories/lookups"
	"github.com/dmitrijs2005/darktrack/internal/netx"
)

// ErrUsage is returned for an unknown command or missing operands.
var ErrUsage = errors.New("usage error")

type App struct {
	config  *config.Config
	client  client.Client
	lookups lookups.Repository
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
	fetch   func(ctx context.Context, url string) ([]byte, error)
	closers []io.Closer
}

// NewApp opens the local database and connects to the server. When no
// access token is configured it is read from the terminal.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if c.AccessToken == "" {
		tok, err := GetToken(os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("read access token: %w", err)
		}
		c.AccessToken = tok
	}

	repos, err := client.InitDatabase(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewScanClient(c.ServerEndpointAddr, c.AccessToken)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := newApp(c, apiClient, repos.Lookups, os.Stdin, os.Stdout)
	a.closers = []io.Closer{apiClient, repos}
	return a, nil
}

func newApp(c *config.Config, cl client.Client, repo lookups.Repository, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		client:  cl,
		lookups: repo,
		reader:  bufio.NewReader(in),
		out:     out,
		now:     time.Now,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return netx.DownloadPresignedURL(ctx, nil, url)
		},
	}
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Run executes one command. Failures are printed in a readable form and
// returned so the caller can set the exit status.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(a.out, "Unknown command:", args[0])
		a.usage()
		return ErrUsage
	}
	operands := args[1:]
	if len(operands) < cmd.minArgs || len(operands) > cmd.maxArgs {
		fmt.Fprintf(a.out, "Usage: %s\n", cmd.usage)
		return ErrUsage
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if err := cmd.run(a, ctx, operands); err != nil {
		fmt.Fprintln(a.out, describeError(err, a.now()))
		return err
	}
	return nil
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: darktrack-cli [-a addr] [-t token] [-timeout d] [-db path] <command> [args]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(a.out, "  %-24s %s\n", commands[name].usage, commands[name].help)
	}
}
