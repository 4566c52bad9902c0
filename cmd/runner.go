package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotstats/internal/models"
	"github.com/desertthunder/spotstats/internal/repositories"
	"github.com/desertthunder/spotstats/internal/server"
	"github.com/desertthunder/spotstats/internal/services"
	"github.com/desertthunder/spotstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// Session is the part of [services.OAuthClient] the commands drive.
type Session interface {
	server.Authenticator
	Exchange(ctx context.Context, input string) (models.Token, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The session and stats service are built from the loaded config on first use unless injected.
type Runner struct {
	config     *shared.Config
	configPath string
	session    Session
	stats      services.StatsService
	store      io.Closer
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    Session
	Stats      services.StatsService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    opts.Session,
		stats:      opts.Stats,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, topCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger; the TUI redirects logs to a file so they don't interfere with rendering.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Before loads the config named by --config, applies environment overrides and --verbose.
// An injected config is kept as is.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.config != nil {
		return ctx, nil
	}

	if err := shared.LoadDotEnv(); err != nil {
		return ctx, err
	}

	config, err := loadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	config.ApplyEnv()
	r.config = config
	return ctx, nil
}

// loadConfig reads path, falling back to the defaults without credentials when the file doesn't exist.
func loadConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(shared.ExpandPath(path)); errors.Is(err, os.ErrNotExist) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = ""
		config.Credentials.Spotify.ClientSecret = ""
		return config, nil
	}
	return shared.LoadConfig(path)
}

// connect builds the token store, the OAuth session and the Spotify service from the config.
func (r *Runner) connect(ctx context.Context) error {
	if r.session != nil && r.stats != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	store, closer, err := repositories.Open(ctx, r.config)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	r.store = closer

	timeout := r.config.HTTP.RequestTimeout()
	oauth, err := services.NewOAuthClient(ctx, services.OAuthOptions{
		Credentials: r.config.Credentials.Spotify,
		Store:       store,
		Timeout:     timeout,
		Logger:      shared.WithLogger(r.logger, "component", "oauth"),
	})
	if err != nil {
		return err
	}

	spotify, err := services.NewSpotifyService(services.SpotifyOptions{
		Tokens:     oauth,
		HTTPClient: r.httpClient,
		Timeout:    timeout,
		RateLimit:  r.config.HTTP.RateLimit,
		MaxRetries: r.config.HTTP.MaxRetries,
		Logger:     shared.WithLogger(r.logger, "component", "spotify"),
	})
	if err != nil {
		return err
	}

	if r.session == nil {
		r.session = oauth
	}
	if r.stats == nil {
		r.stats = spotify
	}
	return nil
}

// Close releases the token store.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
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
