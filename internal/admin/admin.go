// Package admin implements the operator tool that manages administrator
// accounts and report exports directly against the store. None of this is
// reachable over HTTP.
package admin

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dmitrijs2005/learnprogress/internal/common"
	"github.com/dmitrijs2005/learnprogress/internal/dbx"
	"github.com/dmitrijs2005/learnprogress/internal/filex"
	"github.com/dmitrijs2005/learnprogress/internal/logging"
	"github.com/dmitrijs2005/learnprogress/internal/netx"
	"github.com/dmitrijs2005/learnprogress/internal/server/config"
	"github.com/dmitrijs2005/learnprogress/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/learnprogress/internal/server/services"
)

// Commands lists the supported subcommands.
var Commands = []string{"create", "check", "export"}

// ErrUsage is returned for unknown subcommands and bad flags.
var ErrUsage = errors.New("usage: admin [-d dsn] [-r driver] create -email E -username U | check -email E | export [-o file]")

type reportExporter interface {
	ExportReport(ctx context.Context) (*services.ExportedReport, error)
}

// test seams
var (
	newReportExporter = func(accounts services.AccountLister, cfg *config.Config, log logging.Logger) reportExporter {
		return services.NewReportService(accounts, cfg, log)
	}
	downloadReport = func(ctx context.Context, url string) ([]byte, error) {
		return netx.DownloadFromPresignedURL(ctx, nil, url)
	}
)

type App struct {
	config   *config.Config
	db       *sql.DB
	accounts *services.AccountService
	logger   logging.Logger
	in       *bufio.Reader
	out      io.Writer
}

// NewApp opens the configured store and brings its schema up to date.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	dialect, err := dbx.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewSQLRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &App{
		config:   cfg,
		db:       db,
		accounts: services.NewAccountService(db, m, cfg, logger),
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// SplitCommand returns args starting at the first subcommand name, or nil
// when there is none. Everything before it belongs to the config loader.
func SplitCommand(args []string) []string {
	for i, arg := range args {
		if slices.Contains(Commands, arg) {
			return args[i:]
		}
	}
	return nil
}

// Run executes one subcommand; args[0] is its name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "create":
		return a.create(ctx, args[1:])
	case "check":
		return a.check(ctx, args[1:])
	case "export":
		return a.export(ctx, args[1:])
	default:
		return ErrUsage
	}
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "administrator email")
	username := fs.String("username", "", "administrator display name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	var err error
	if *email == "" {
		if *email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
			return err
		}
	}
	if *username == "" {
		if *username, err = GetSimpleText(a.in, "Username", a.out); err != nil {
			return err
		}
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}
	defer WipeAll(pw)

	if _, err := a.accounts.RegisterAdmin(ctx, *email, *username, string(pw)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Administrator %s created\n", *email)
	return nil
}

func (a *App) check(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	err := a.accounts.CheckAdminRole(ctx, *email)
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "%s is an administrator\n", *email)
		return nil
	case errors.Is(err, common.ErrForbidden):
		fmt.Fprintf(a.out, "%s is not an administrator\n", *email)
		return nil
	default:
		return err
	}
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	output := fs.String("o", "", "also save the report to this file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if !a.config.ExportEnabled() {
		return errors.New("report export is not configured: set S3_BUCKET or -b")
	}

	res, err := newReportExporter(a.accounts, a.config, a.logger).ExportReport(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Report uploaded: %s\n%s\n", res.Key, res.URL)

	if *output == "" {
		return nil
	}

	body, err := downloadReport(ctx, res.URL)
	if err != nil {
		return fmt.Errorf("download report: %w", err)
	}
	if err := filex.EnsureParentDir(*output); err != nil {
		return err
	}
	if err := os.WriteFile(*output, body, 0o640); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved to %s\n", *output)
	return nil
}

// WipeAll zeroes every given buffer.
func WipeAll(bufs ...[]byte) {
	for _, b := range bufs {
		common.WipeByteArray(b)
	}
}
