package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/nugget/lazybeagle/internal/config"
)

type commandContext struct {
	stdout     io.Writer
	stderr     io.Writer
	configFlag *string
	outputFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(stdout, stderr io.Writer, configFlag, outputFlag *string) *commandContext {
	return &commandContext{
		stdout:     stdout,
		stderr:     stderr,
		configFlag: configFlag,
		outputFlag: outputFlag,
	}
}

// ensureConfig loads the settings file once. Without an explicit --config
// and with nothing found on the search path, the built-in defaults apply.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		explicit := ""
		if c.configFlag != nil {
			explicit = strings.TrimSpace(*c.configFlag)
		}

		path, err := config.FindConfig(explicit)
		switch {
		case err == nil:
			cfg, loadErr := config.Load(path)
			if loadErr != nil {
				c.configErr = fmt.Errorf("load config %s: %w", path, loadErr)
				return
			}
			c.config = cfg
			c.configPath = path
		case explicit == "" && errors.Is(err, config.ErrNotFound):
			c.config = config.Default()
		default:
			c.configErr = err
			return
		}

		if err := c.config.Validate(); err != nil {
			c.config = nil
			c.configErr = err
		}
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.outputFlag != nil && *c.outputFlag == "json"
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return config.NewLogger(c.stderr, level, cfg.LogFormat), nil
}

// withApp opens the application, runs fn, and closes it, flushing any
// pending override write. A close error is reported only when fn
// succeeded.
func (c *commandContext) withApp(ctx context.Context, fn func(*app) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cfg)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(a)
}
