package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/qaren/internal/services"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	tokens     *services.TokenCache
	searcher   services.FlightSearcher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Searcher   services.FlightSearcher // replaces the upstream client when set
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		searcher:   opts.Searcher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, searchCommand, tokenCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// tokenCache builds the process-wide token cache on first use.
func (r *Runner) tokenCache() (*services.TokenCache, error) {
	if r.tokens != nil {
		return r.tokens, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	up := r.config.Upstream
	r.tokens = services.NewTokenCache(services.TokenCacheOpts{
		TokenURL:     up.TokenURL,
		ClientID:     r.config.Credentials.Amadeus.ClientID,
		ClientSecret: r.config.Credentials.Amadeus.ClientSecret,
		Margin:       up.ExpiryMargin,
		HTTPClient:   r.httpClient,
	})
	return r.tokens, nil
}

// flightSearcher returns the searcher for CLI commands: a running server when proxyURL is set,
// otherwise the upstream API.
func (r *Runner) flightSearcher(proxyURL string) (services.FlightSearcher, error) {
	if proxyURL != "" {
		return services.NewProxyClient(proxyURL, r.httpClient), nil
	}
	if r.searcher != nil {
		return r.searcher, nil
	}

	tokens, err := r.tokenCache()
	if err != nil {
		return nil, err
	}

	up := r.config.Upstream
	r.searcher = services.NewFlightService(tokens, services.FlightServiceOpts{
		SearchURL:  up.SearchURL,
		MaxResults: up.MaxResults,
		RateLimit:  up.RateLimit,
		Timeout:    up.Timeout,
		HTTPClient: r.httpClient,
	})
	return r.searcher, nil
}

// openHistory opens the history database from config.
func (r *Runner) openHistory() (*sql.DB, error) {
	if r.config.Database.Path == "" {
		return nil, fmt.Errorf("%w: database.path is not set", shared.ErrHistoryDisabled)
	}
	db, err := shared.OpenHistoryDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
