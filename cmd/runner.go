package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/repositories"
	"github.com/desertthunder/playster/internal/services"
	"github.com/desertthunder/playster/internal/session"
	"github.com/desertthunder/playster/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores, the auth controller and the playlist service are wired on first use so commands such as
// `setup config` never touch the database.
type Runner struct {
	config       *shared.Config
	configPath   string
	configLoaded bool

	db        *sql.DB
	ownsDB    bool
	session   *session.Holder
	prefs     *repositories.PreferenceStore
	tokens    *repositories.TokenRepository
	broker    auth.Broker
	playlists services.PlaylistService

	openBrowser shared.BrowserOpener
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Session    *session.Holder
	Broker     auth.Broker
	Playlists  services.PlaylistService

	// OpenBrowser defaults to [shared.OpenBrowser]; auth.open_browser = false disables it.
	OpenBrowser shared.BrowserOpener
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		configLoaded: loaded,
		db:           opts.DB,
		session:      opts.Session,
		broker:       opts.Broker,
		playlists:    opts.Playlists,
		openBrowser:  opts.OpenBrowser,
		logger:       opts.Logger,
		output:       opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and everything it wires afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// before loads the configuration named by --config unless one was injected, and applies --debug.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetDebug(r.logger, true)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.configLoaded {
		return ctx, nil
	}

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.logger.Debug("loaded config", "path", r.configPath)
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	r.configLoaded = true
	return ctx, nil
}

// after closes the database if a command opened it.
func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.prefs, r.tokens = nil, nil, nil
	r.ownsDB = false
	return err
}

// stores opens the database and builds the session and the preference and token stores.
func (r *Runner) stores() error {
	if r.session == nil {
		r.session = session.New(r.logger)
	}
	if r.prefs != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		r.ownsDB = true
	}

	r.prefs = repositories.NewPreferenceStore(r.db, r.logger)
	r.tokens = repositories.NewTokenRepository(r.db)
	return nil
}

// controller builds the auth controller. Prompts go to prompter.
func (r *Runner) controller(prompter auth.Prompter) (*auth.Controller, error) {
	if err := r.stores(); err != nil {
		return nil, err
	}

	broker := r.broker
	if broker == nil {
		broker = auth.NewFileBroker(shared.ExpandPath(r.config.Auth.CredentialsPath))
	}

	opener := r.openBrowser
	if !r.config.Auth.OpenBrowser {
		opener = shared.NoBrowser
	}

	return auth.NewController(auth.Options{
		OAuth:          auth.NewOAuthConfig(r.config.Google),
		Session:        r.session,
		Accounts:       r.prefs,
		Tokens:         r.tokens,
		Broker:         broker,
		Prompter:       prompter,
		OpenBrowser:    opener,
		CallbackAddr:   r.config.Server.Addr(),
		AccountType:    r.config.App.AccountType,
		ServerClientID: r.config.Google.Audience(),
		Timeout:        r.config.Auth.Timeout,
		BrokerTimeout:  r.config.Auth.BrokerTimeout,
		Logger:         r.logger,
	}), nil
}

// playlistService returns the injected playlist service or builds the YouTube one on top of the controller.
func (r *Runner) playlistService(ctrl *auth.Controller) services.PlaylistService {
	if r.playlists != nil {
		return r.playlists
	}
	r.playlists = services.NewYouTubeService(services.YouTubeOptions{
		Tokens:    ctrl,
		Endpoint:  r.config.YouTube.Endpoint,
		Timeout:   r.config.YouTube.Timeout,
		RateLimit: r.config.YouTube.RateLimit,
		Logger:    r.logger,
	})
	return r.playlists
}

// restore adopts the persisted account, if any, into the session.
func (r *Runner) restore(ctx context.Context) error {
	if err := r.stores(); err != nil {
		return err
	}
	id, ok, err := r.prefs.Account(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored account: %w", err)
	}
	if ok {
		r.session.Restore(id)
	}
	return nil
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
