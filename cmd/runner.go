package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yt2text/internal/repositories"
	"github.com/desertthunder/yt2text/internal/services"
	"github.com/desertthunder/yt2text/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     services.Client
	service    *services.TranscriberService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Client     services.Client
	Service    *services.TranscriberService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Service == nil {
		opts.Service = services.NewTranscriberService(opts.Config.Backend.BaseURL, nil)
	}
	if opts.Client == nil {
		opts.Client = opts.Service
	}

	return &Runner{
		config:     opts.Config,
		client:     opts.Client,
		service:    opts.Service,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, used when the TUI redirects
// logging to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, processCommand, batchCommand, tasksCommand, watchCommand, healthCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDatabase opens the configured SQLite store with migrations applied.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// ledger builds the job ledger repository over an open database.
func (r *Runner) ledger(db *sql.DB) *repositories.JobLedgerRepository {
	return repositories.NewJobLedgerRepository(db)
}

// applySession loads cookies from the configured curl file, if any, and
// hands them to the service for submission payloads.
func (r *Runner) applySession() {
	if r.service == nil {
		return
	}
	if r.config.Cookies.CurlFile == "" {
		r.service.SetSession(r.config.Cookies.Browser, nil)
		return
	}

	headers, err := shared.ParseCurlFile(r.config.Cookies.CurlFile)
	if err != nil {
		r.logger.Warn("failed to parse cookie file, submitting without session", "file", r.config.Cookies.CurlFile, "error", err)
		r.service.SetSession(r.config.Cookies.Browser, nil)
		return
	}

	cookies := services.CookiesFromCurl(headers, "")
	r.service.SetSession(r.config.Cookies.Browser, cookies)
	r.logger.Debug("session cookies loaded", "count", len(cookies))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
