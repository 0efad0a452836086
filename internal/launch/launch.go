// SPDX-License-Identifier: MPL-2.0

// Package launch ties the pieces together: resolve the app layout, provision
// the environment when needed, pick a launcher from the cascade, and hand the
// process over to the app.
//
// The happy path performs no writes: environment present, launcher found,
// entry present, exec. The provisioning branch runs at most once per launch,
// before the cascade is probed, so a system interpreter further down the
// priority order never masks an environment that still needs to be built.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/platform"
	"bootlace-cli/internal/provision"

	"github.com/charmbracelet/log"
)

// ErrEntryNotFound is the sentinel error wrapped by EntryNotFoundError.
var ErrEntryNotFound = errors.New("entry file not found")

type (
	// EntryNotFoundError is returned when the app's entry file does not exist.
	// It wraps ErrEntryNotFound for errors.Is() compatibility.
	EntryNotFoundError struct {
		EntryPath string
	}

	// handoffFunc transfers control to the launcher process. On POSIX hosts it
	// replaces the current process and never returns on success. Tests inject
	// a recording fake.
	handoffFunc func(path string, argv []string, env []string) error

	// hookFunc runs the post-setup script. Tests inject a fake.
	hookFunc func(ctx context.Context, script, workDir, envBinDir string) error

	// Orchestrator drives one launch or setup of an app directory.
	Orchestrator struct {
		Platform platform.Platform
		Config   *config.Config
		Logger   *log.Logger

		Provisioner *provision.Provisioner

		handoff handoffFunc
		runHook hookFunc
	}
)

// Error implements the error interface for EntryNotFoundError.
func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("entry file not found at %s", e.EntryPath)
}

// Unwrap returns ErrEntryNotFound for errors.Is() compatibility.
func (e *EntryNotFoundError) Unwrap() error { return ErrEntryNotFound }

// New creates an Orchestrator for the host platform and the given config.
func New(p platform.Platform, cfg *config.Config, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		Platform:    p,
		Config:      cfg,
		Logger:      logger,
		Provisioner: provision.New(p, cfg.Setup, logger.WithPrefix("setup")),
		handoff:     execHandoff,
		runHook: func(ctx context.Context, script, workDir, envBinDir string) error {
			return provision.RunPostSetupHook(ctx, script, workDir, envBinDir, os.Stdout, os.Stderr)
		},
	}
}

// Run launches the app at appDir, provisioning its environment first when it
// is absent and auto-setup is enabled. extraArgs are appended to the app's
// command line. On POSIX hosts a successful Run does not return: the process
// is replaced by the app.
func (o *Orchestrator) Run(ctx context.Context, appDir string, extraArgs []string) error {
	lf, layout, err := launchfile.Resolve(appDir, o.Config.Layout)
	if err != nil {
		return err
	}

	// Provision before probing the cascade: a system interpreter lower in the
	// priority order must not mask an absent environment on first run. The
	// existence gate inside Ensure keeps the provisioned path write-free.
	if o.Config.Setup.Auto && !fileExists(o.Platform.EnvInterpreterPath(layout.EnvDir)) {
		if err := o.provisionAndHook(ctx, lf, layout); err != nil {
			return err
		}
	}

	sel, err := locator.Locate(o.Platform.LauncherCandidates(layout.EnvDir))
	if err != nil {
		return err
	}

	if !fileExists(layout.EntryPath) {
		return &EntryNotFoundError{EntryPath: layout.EntryPath}
	}

	argv := append([]string{sel.Path}, sel.Args...)
	argv = append(argv, layout.EntryPath)
	argv = append(argv, extraArgs...)

	o.Logger.Debug("handing off", "launcher", sel.Name, "path", sel.Path, "entry", layout.EntryPath)

	// The app expects to start inside its install root, same as a shortcut
	// launch would.
	if err := os.Chdir(layout.AppDir); err != nil {
		return fmt.Errorf("failed to enter app directory %s: %w", layout.AppDir, err)
	}

	return o.handoff(sel.Path, argv, os.Environ())
}

// Setup provisions (or repairs) the environment for the app at appDir without
// launching it. Used by 'bootlace setup'.
func (o *Orchestrator) Setup(ctx context.Context, appDir string) (provision.Result, error) {
	lf, layout, err := launchfile.Resolve(appDir, o.Config.Layout)
	if err != nil {
		return provision.Result{}, err
	}

	res, err := o.Provisioner.Ensure(ctx, layout)
	if err != nil {
		return res, err
	}

	switch res.Status {
	case provision.StatusCreated:
		o.maybeRunHook(ctx, lf, layout)
	case provision.StatusAlreadyPresent:
		changed, err := o.Provisioner.SyncDeps(ctx, layout)
		if err != nil {
			return res, err
		}
		if changed {
			o.maybeRunHook(ctx, lf, layout)
		}
	}

	return res, nil
}

// provisionAndHook runs the first-launch setup branch of Run.
func (o *Orchestrator) provisionAndHook(ctx context.Context, lf *launchfile.Launchfile, layout launchfile.Layout) error {
	res, err := o.Provisioner.Ensure(ctx, layout)
	if err != nil {
		return err
	}
	if res.Status == provision.StatusCreated {
		o.maybeRunHook(ctx, lf, layout)
	}
	return nil
}

// maybeRunHook runs the launchfile's post_setup script when one is declared.
// Hook failures are logged, never fatal: the environment itself is sound.
func (o *Orchestrator) maybeRunHook(ctx context.Context, lf *launchfile.Launchfile, layout launchfile.Layout) {
	if lf.Hooks.PostSetup == "" {
		return
	}
	o.Logger.Info("running post-setup hook")
	if err := o.runHook(ctx, lf.Hooks.PostSetup, layout.AppDir, o.Platform.EnvBinDir(layout.EnvDir)); err != nil {
		o.Logger.Warn("post-setup hook failed", "err", err)
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
