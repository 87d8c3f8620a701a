// Command restgate administers the metadata schema of a REST gateway.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/restgate/internal/adapters/driven/config/file"
	"github.com/custodia-labs/restgate/internal/adapters/driven/idgen"
	"github.com/custodia-labs/restgate/internal/adapters/driven/prompt"
	"github.com/custodia-labs/restgate/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/restgate/internal/adapters/driving/cli"
	"github.com/custodia-labs/restgate/internal/core/services"
	"github.com/custodia-labs/restgate/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// closers closes everything bootstrap opened, in reverse order.
type closers []io.Closer

func (c closers) Close() error {
	var result error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func bootstrap(ctx context.Context, flags cli.Flags) (cli.Services, io.Closer, error) {
	env, err := file.LoadEnv()
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("reading environment: %w", err)
	}
	settings, cfg, err := file.Resolve(file.Overrides{
		DSN:       flags.DSN,
		ConfigDir: flags.ConfigDir,
		LogFile:   flags.LogFile,
	}, env)
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("loading configuration: %w", err)
	}

	var opened closers
	if settings.LogLevel != "" && !flags.Verbose {
		if err := logger.SetLevel(settings.LogLevel); err != nil {
			return cli.Services{}, nil, fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
		}
	}
	if settings.LogFile != "" {
		opened = append(opened, logger.SetFile(settings.LogFile))
	}

	store, err := sqlstore.Open(ctx, settings.DSN)
	if err != nil {
		_ = opened.Close()
		return cli.Services{}, nil, fmt.Errorf("opening metadata store: %w", err)
	}
	opened = append(opened, store)

	ids := idgen.New()
	prompter := prompt.New(os.Stdin, os.Stderr)

	serviceAdmin := services.NewServiceAdmin(store, ids)
	serviceAdmin.SetPrompter(prompter)
	serviceAdmin.SetCurrentServiceStore(cfg)

	authAppAdmin := services.NewAuthAppAdmin(store, ids)
	authAppAdmin.SetPrompter(prompter)
	authAppAdmin.SetCurrentServiceStore(cfg)

	contentSetAdmin := services.NewContentSetAdmin(store, ids)
	contentSetAdmin.SetPrompter(prompter)
	contentSetAdmin.SetCurrentServiceStore(cfg)

	cli.SetOutputFormat(settings.OutputFormat)

	logger.Debug("using metadata store %s", settings.DSN)
	return cli.Services{
		Services:    serviceAdmin,
		AuthApps:    authAppAdmin,
		ContentSets: contentSetAdmin,
		Vendors:     services.NewVendorCatalog(store),
	}, opened, nil
}
