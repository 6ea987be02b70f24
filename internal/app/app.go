// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/adapters/cas"        //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/fs"         //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/middleware" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/transform"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/watcher"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/compiler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// ignoredDirs are never searched for sources.
var ignoredDirs = []string{"node_modules"}

type fileWalker interface {
	WalkFiles(root string, ignores []string) iter.Seq[string]
}

type formatSetter interface {
	SetFormat(format string)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	tracer       ports.Tracer
	hasher       ports.Hasher
	oracle       ports.FreshnessOracle
	reader       ports.SourceReader
	writer       ports.ArtifactWriter
	walker       fileWalker
	watcher      ports.Watcher
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	tracer ports.Tracer,
	hasher ports.Hasher,
	oracle ports.FreshnessOracle,
	reader ports.SourceReader,
	writer ports.ArtifactWriter,
	walker fileWalker,
	w ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		tracer:       tracer,
		hasher:       hasher,
		oracle:       oracle,
		reader:       reader,
		writer:       writer,
		walker:       walker,
		watcher:      w,
	}
}

// Options are the command line settings shared by every command.
// Non-empty fields override the configuration file.
type Options struct {
	ConfigPath string
	Src        string
	Dest       string
	Enable     []string
	Verify     string
	LogFormat  string
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	Options
	Listen string
	Watch  bool
	// Ready, if set, is called with the bound address once the server accepts connections.
	Ready func(addr net.Addr)
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	Options
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Options
	// Artifacts also removes every compiled artifact that has a source.
	Artifacts bool
}

// LoadConfig reads the configuration file and applies the command line overrides.
func (a *App) LoadConfig(opts Options) (*domain.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = domain.ConfigFileName
	}

	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if opts.Src != "" {
		src, err := filepath.Abs(opts.Src)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", opts.Src)
		}
		// A destination that defaulted to the source root follows the override.
		if cfg.Dest == cfg.Src {
			cfg.Dest = src
		}
		cfg.Src = src
	}
	if opts.Dest != "" {
		dest, err := filepath.Abs(opts.Dest)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", opts.Dest)
		}
		cfg.Dest = dest
	}
	if len(opts.Enable) > 0 {
		cfg.Enable = opts.Enable
	}
	if opts.Verify != "" {
		cfg.Verify = domain.VerifyMode(opts.Verify)
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}

	if f, ok := a.logger.(formatSetter); ok {
		f.SetFormat(cfg.LogFormat)
	}
	return cfg, nil
}

// NewCompiler assembles a compiler for cfg.
// In hash mode the build info store lives under the destination root.
func (a *App) NewCompiler(cfg *domain.Config) (*compiler.Compiler, error) {
	registry, err := transform.NewDefaultRegistry(a.executor, cfg.Commands)
	if err != nil {
		return nil, err
	}

	oracle := a.oracle
	options := []compiler.Option{
		compiler.WithTracer(a.tracer),
		compiler.WithLogger(a.logger),
	}

	if cfg.Verify == domain.VerifyHash {
		dest := cfg.Dest
		if dest == "" {
			dest = cfg.Src
		}
		store := cas.NewStoreForDest(dest)
		oracle = fs.NewHashOracle(a.oracle, a.hasher, store)
		options = append(options, compiler.WithBuildInfo(store, a.hasher))
	}

	return compiler.New(cfg.Options, registry, oracle, a.reader, a.writer, options...)
}

// Serve serves the destination root over HTTP, compiling assets on request,
// until ctx is canceled.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := a.LoadConfig(opts.Options)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	comp, err := a.NewCompiler(cfg)
	if err != nil {
		return err
	}

	handler := hideBuildInfo(middleware.New(comp, middleware.WithLogger(a.logger)).
		Handler(http.FileServer(http.Dir(comp.Dest()))))

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.Listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "listen", cfg.Listen)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)

	if opts.Watch && a.watcher != nil {
		if err := a.watcher.Start(ctx, comp.Src()); err != nil {
			_ = ln.Close()
			return err
		}
		g.Go(func() error {
			a.watch(ctx, comp)
			return nil
		})
	}

	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, domain.ErrServerFailed.Error())
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	a.logger.Info(fmt.Sprintf("serving %s on http://%s", comp.Dest(), ln.Addr()))
	if opts.Ready != nil {
		opts.Ready(ln.Addr())
	}

	return g.Wait()
}

// hideBuildInfo answers 404 for anything under a build info directory.
func hideBuildInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		segments := strings.Split(path.Clean("/"+r.URL.Path), "/")
		if slices.Contains(segments, domain.KilnDirName) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// watch recompiles artifacts whose sources change until ctx is done.
func (a *App) watch(ctx context.Context, comp *compiler.Compiler) {
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		for _, p := range paths {
			for _, requestPath := range comp.RequestPaths(p) {
				// Failures are reported by the build span; the next request retries.
				_, _ = comp.Ensure(ctx, requestPath)
			}
		}
	})
	defer debouncer.Stop()

	go func() {
		<-ctx.Done()
		_ = a.watcher.Stop()
	}()

	for event := range a.watcher.Events() {
		if event.Operation == ports.OpWrite {
			debouncer.Add(event.Path)
		}
	}
}

// Build compiles every stale artifact that has a source under the source root.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	cfg, err := a.LoadConfig(opts.Options)
	if err != nil {
		return err
	}

	comp, err := a.NewCompiler(cfg)
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		errs   error
		counts = make(map[domain.Outcome]int)
	)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for path := range a.walker.WalkFiles(comp.Src(), ignoredDirs) {
		for _, requestPath := range comp.RequestPaths(path) {
			g.Go(func() error {
				outcome, err := comp.Ensure(ctx, requestPath)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = errors.Join(errs, err)
					return nil
				}
				counts[outcome]++
				return nil
			})
		}
	}
	_ = g.Wait()

	a.logger.Info(fmt.Sprintf("%d built, %d fresh", counts[domain.OutcomeBuilt], counts[domain.OutcomeFresh]))

	if errs != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, errs)
	}
	return nil
}

// Clean removes the build info store and, optionally, the compiled artifacts.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	cfg, err := a.LoadConfig(opts.Options)
	if err != nil {
		return err
	}

	var errs error

	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if opts.Artifacts {
		comp, err := a.NewCompiler(cfg)
		if err != nil {
			return err
		}
		for path := range a.walker.WalkFiles(comp.Src(), ignoredDirs) {
			for _, requestPath := range comp.RequestPaths(path) {
				artifact, _ := comp.Resolve(requestPath)
				if _, err := os.Stat(artifact.Key); err == nil {
					remove(artifact.Key, requestPath)
				}
			}
		}
	}

	dest := cfg.Dest
	if dest == "" {
		dest = cfg.Src
	}
	remove(filepath.Join(dest, domain.KilnDirName), "build info store")

	return errs
}
