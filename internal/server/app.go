// Package server initializes and runs the docshare server.
// It wires the token issuer, example catalog, association store and
// document engine client into the session service, handles graceful
// shutdown, and serves the HTTP API.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/docengine"
	"github.com/dmitrijs2005/docshare/internal/server/examples"
	"github.com/dmitrijs2005/docshare/internal/server/httpapi"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/associations"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docshare/internal/server/sessions"
	"github.com/go-redis/redis/v8"
)

var (
	logOutput io.Writer = os.Stdout

	openPostgres = repomanager.OpenPostgres

	newRepositoryManager = repomanager.NewPostgresRepositoryManager

	newRedisClient = func(addr string) *redis.Client {
		return redis.NewClient(&redis.Options{Addr: addr})
	}

	newS3Source = func(ctx context.Context, s examples.S3Settings) (examples.Source, error) {
		return examples.NewS3Source(ctx, s)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	flush   func()
	server  *httpapi.HTTPServer
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, flush, err := logging.New(c.LogBackend, logOutput)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, flush: flush}

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	issuer, err := newIssuer(c)
	if err != nil {
		return err
	}

	catalog, err := examples.LoadRegistry(c.ExamplesCatalog)
	if err != nil {
		return fmt.Errorf("example catalog init error: %w", err)
	}

	source, err := app.newSource(ctx)
	if err != nil {
		return fmt.Errorf("example source init error: %w", err)
	}

	repo, err := app.newAssociationStore(ctx)
	if err != nil {
		return fmt.Errorf("association store init error: %w", err)
	}

	engine := docengine.NewClient(c.DocumentEngineURL, c.DocumentEngineAuthToken, &http.Client{})

	svc := sessions.NewService(engine, issuer, catalog, source, repo, app.logger, c)
	h := httpapi.NewHandler(svc, issuer, catalog, app.logger, c.DocumentEngineURL)
	app.server = httpapi.NewHTTPServer(c.EndpointAddrHTTP, c.ClientURL, app.logger, h)

	return nil
}

// newIssuer loads key material. With collaboration disabled a missing
// signing key is tolerated until a token is actually requested.
func newIssuer(c *config.Config) (*auth.Issuer, error) {
	key, err := auth.LoadPrivateKey(c.JWTPrivateKey, c.JWTPrivateKeyFile)
	if err != nil {
		return nil, err
	}

	var opts []auth.Option
	if !c.CollaborationEnabled {
		opts = append(opts, auth.WithKeyOptional())
	}
	if c.AssistantURL != "" {
		assistantKey, err := auth.LoadPrivateKey(c.AssistantJWTPrivateKey, "")
		if err != nil {
			return nil, err
		}
		opts = append(opts, auth.WithAssistant(c.AssistantURL, assistantKey))
	}

	return auth.NewIssuer(key, opts...)
}

func (app *App) newSource(ctx context.Context) (examples.Source, error) {
	c := app.config
	if c.S3Bucket == "" {
		return examples.NewDirSource(c.ExamplesDir), nil
	}

	app.logger.Info(ctx, "Reading examples from S3", "bucket", c.S3Bucket)
	return newS3Source(ctx, examples.S3Settings{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
}

// newAssociationStore picks PostgreSQL, then Redis, then memory.
func (app *App) newAssociationStore(ctx context.Context) (associations.Repository, error) {
	c := app.config

	switch {
	case c.DatabaseDSN != "":
		db, err := openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)

		rm := newRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		app.logger.Info(ctx, "Using PostgreSQL association store")
		return rm.Associations(db), nil

	case c.RedisAddr != "":
		client := newRedisClient(c.RedisAddr)
		app.closers = append(app.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		app.logger.Info(ctx, "Using Redis association store", "address", c.RedisAddr)
		return associations.NewRedisRepository(client), nil

	default:
		app.logger.Warn(ctx, "Using in-memory association store; cached documents are lost on restart")
		return associations.NewMemoryRepository(), nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Error(ctx, "close error", "error", err)
		}
	}
	app.closers = nil
	app.flush()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	app.close(ctx)
}
