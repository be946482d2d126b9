package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/repobolt"
	"github.com/jrsteele09/go-auth-client/credentials/repomemory"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

// boltLockTimeout bounds the wait for the credentials file when another process holds it.
const boltLockTimeout = 2 * time.Second

// app wires the session components from configuration.
type app struct {
	cfg        config.Config
	persistent *repobolt.Repo
	store      *credentials.Store
	client     *auth.Client
	state      *session.State
	users      *users.Service
	tracker    *auth.LocationTracker
	metrics    *metrics.Recorder
}

func loadConfig() (config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func newApp(cfg config.Config) (*app, error) {
	persistent, err := repobolt.NewRepoFromFolder(cfg.GetDataFolder(), &bbolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] open persistent credential store")
	}

	a, err := wire(cfg, persistent)
	if err != nil {
		_ = persistent.Close()
		return nil, err
	}
	return a, nil
}

func wire(cfg config.Config, persistent *repobolt.Repo) (*app, error) {
	store, err := credentials.NewStore(repomemory.NewInMemoryRepo(), persistent)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.GetHTTPTimeout()}
	tracker := auth.NewLocationTracker()
	if cfg.GetOpenBrowser() {
		tracker = auth.NewBrowserNavigator()
	}
	recorder := metrics.New()

	client, err := auth.NewClient(cfg.GetAPIBaseURL(), store,
		auth.WithHTTPClient(httpClient),
		auth.WithNavigator(tracker),
		auth.WithPollInterval(cfg.GetPollInterval()),
		auth.WithMetrics(recorder),
	)
	if err != nil {
		return nil, err
	}
	state, err := session.New(client)
	if err != nil {
		return nil, err
	}
	userService, err := users.NewService(cfg.GetAPIBaseURL(), httpClient, client)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		persistent: persistent,
		store:      store,
		client:     client,
		state:      state,
		users:      userService,
		tracker:    tracker,
		metrics:    recorder,
	}, nil
}

func (a *app) Close() error {
	return a.persistent.Close()
}

// withApp loads configuration, wires the app and closes it after fn.
func withApp(fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close credential store")
		}
	}()
	return fn(a)
}
