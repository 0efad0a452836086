// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/platform"

	"github.com/charmbracelet/log"
)

// Status values for a provisioning run.
const (
	// StatusAlreadyPresent means the environment existed and nothing was written.
	StatusAlreadyPresent Status = "already-present"
	// StatusCreated means the environment was created and populated.
	StatusCreated Status = "created"
	// StatusFailed means provisioning failed and no environment was published.
	StatusFailed Status = "failed"
)

// stagingSuffix is appended to the environment path for the build directory.
// The staged tree is renamed into the final path only on full success.
const stagingSuffix = ".partial"

// lockSuffix is appended to the environment path for the provisioning lock file.
const lockSuffix = ".lock"

type (
	// Status is the outcome of one Ensure call. Consumed once per launch.
	Status string

	// Result describes what Ensure did.
	Result struct {
		// Status is the overall outcome.
		Status Status
		// BaseInterpreter is the interpreter used to create the environment
		// ("" for StatusAlreadyPresent).
		BaseInterpreter string
		// DepsInstalled reports whether the declared dependencies are known
		// to be present (true also when no manifest exists).
		DepsInstalled bool
	}

	// RunFunc executes one external command to completion. Tests inject fakes.
	RunFunc func(ctx context.Context, name string, args ...string) error

	// Provisioner creates the isolated environment on first run.
	Provisioner struct {
		// Platform supplies interpreter candidates and environment paths.
		Platform platform.Platform
		// Policy is the dependency-install failure policy.
		Policy config.DepsPolicy
		// CreateTimeout bounds the environment-creation subprocess.
		CreateTimeout time.Duration
		// InstallTimeout bounds each dependency-install subprocess.
		InstallTimeout time.Duration
		// Logger receives progress and non-fatal failures.
		Logger *log.Logger
		// Run executes the venv/pip subprocesses. Nil means the default
		// exec-based runner; tests inject fakes.
		Run RunFunc
	}
)

// New creates a Provisioner from the setup configuration.
func New(p platform.Platform, setup config.SetupConfig, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "setup"})
	}
	return &Provisioner{
		Platform:       p,
		Policy:         setup.DepsPolicy,
		CreateTimeout:  setup.CreateTimeoutDuration(),
		InstallTimeout: setup.InstallTimeoutDuration(),
		Logger:         logger,
		Run:            execRun,
	}
}

// runner returns the configured RunFunc, defaulting to the exec-based one.
func (p *Provisioner) runner() RunFunc {
	if p.Run != nil {
		return p.Run
	}
	return execRun
}

// Ensure makes the isolated environment at layout.EnvDir exist and be
// populated from the dependency manifest. It is idempotent: when the
// environment's interpreter already exists, Ensure returns immediately with
// StatusAlreadyPresent and performs no filesystem writes.
func (p *Provisioner) Ensure(ctx context.Context, layout launchfile.Layout) (Result, error) {
	gate := p.Platform.EnvInterpreterPath(layout.EnvDir)
	if fileExists(gate) {
		return Result{Status: StatusAlreadyPresent, DepsInstalled: true}, nil
	}

	// Serialize concurrent first runs. On hosts without flock this is a no-op
	// and the staging rename below is the only protection.
	lock, err := acquireSetupLock(layout.EnvDir + lockSuffix)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("failed to acquire setup lock: %w", err)
	}
	defer lock.Release()

	// Re-check after the lock: another process may have provisioned while we
	// waited for it.
	if fileExists(gate) {
		return Result{Status: StatusAlreadyPresent, DepsInstalled: true}, nil
	}

	base, err := locator.Locate(p.Platform.BaseInterpreterCandidates())
	if err != nil {
		var ue *locator.UnavailableError
		var probed []string
		if errors.As(err, &ue) {
			probed = ue.Probed
		}
		return Result{Status: StatusFailed}, &NoBaseRuntimeError{Probed: probed}
	}

	p.Logger.Info("creating environment", "dir", layout.EnvDir, "base", base.Name)

	staging := layout.EnvDir + stagingSuffix
	// A stale staging tree from an interrupted earlier run is worthless.
	if err := os.RemoveAll(staging); err != nil {
		return Result{Status: StatusFailed}, &EnvCreationError{EnvDir: layout.EnvDir, Cause: err}
	}

	createCtx, cancel := context.WithTimeout(ctx, p.CreateTimeout)
	defer cancel()
	createArgs := append(append([]string{}, base.Args...), "-m", "venv", staging)
	if err := p.runner()(createCtx, base.Path, createArgs...); err != nil {
		_ = os.RemoveAll(staging) // Best-effort cleanup on error path
		return Result{Status: StatusFailed}, &EnvCreationError{EnvDir: layout.EnvDir, Cause: err}
	}

	depsInstalled, manifestHash, depsErr := p.populate(ctx, staging, layout.ManifestPath)
	if depsErr != nil && p.Policy == config.DepsPolicyFailFast {
		_ = os.RemoveAll(staging) // Best-effort cleanup on error path
		return Result{Status: StatusFailed}, depsErr
	}
	if depsErr != nil {
		// Best-effort: publish anyway; the receipt records the gap so
		// 'bootlace setup' can repair it later.
		p.Logger.Warn("dependency install failed, environment kept", "err", depsErr)
	}

	receipt := Receipt{
		BaseInterpreter: base.Path,
		ManifestSHA256:  manifestHash,
		DepsInstalled:   depsInstalled,
		CreatedAt:       time.Now().UTC(),
	}
	if err := writeReceipt(staging, receipt); err != nil {
		_ = os.RemoveAll(staging) // Best-effort cleanup on error path
		return Result{Status: StatusFailed}, &EnvCreationError{EnvDir: layout.EnvDir, Cause: err}
	}

	// Atomic publish: the environment becomes visible only now.
	if err := os.Rename(staging, layout.EnvDir); err != nil {
		_ = os.RemoveAll(staging) // Best-effort cleanup on error path
		return Result{Status: StatusFailed}, &EnvCreationError{EnvDir: layout.EnvDir, Cause: err}
	}

	p.Logger.Info("environment ready", "dir", layout.EnvDir, "deps_installed", depsInstalled)
	return Result{Status: StatusCreated, BaseInterpreter: base.Path, DepsInstalled: depsInstalled}, nil
}

// SyncDeps repairs an already-present environment: when the receipt records a
// failed install or the manifest changed since provisioning, the declared
// dependencies are (re)installed and the receipt rewritten. Used by
// 'bootlace setup'; the launch path never calls it.
func (p *Provisioner) SyncDeps(ctx context.Context, layout launchfile.Layout) (bool, error) {
	if !fileExists(p.Platform.EnvInterpreterPath(layout.EnvDir)) {
		return false, fmt.Errorf("environment at %s does not exist", layout.EnvDir)
	}
	if !fileExists(layout.ManifestPath) {
		return false, nil
	}

	currentHash, err := hashFile(layout.ManifestPath)
	if err != nil {
		return false, fmt.Errorf("failed to hash manifest: %w", err)
	}

	receipt, err := readReceipt(layout.EnvDir)
	if err != nil {
		return false, err
	}
	if receipt != nil && receipt.DepsInstalled && receipt.ManifestSHA256 == currentHash {
		return false, nil
	}

	p.Logger.Info("installing dependencies", "manifest", layout.ManifestPath)
	if err := p.installDeps(ctx, layout.EnvDir, layout.ManifestPath); err != nil {
		return false, err
	}

	updated := Receipt{
		ManifestSHA256: currentHash,
		DepsInstalled:  true,
		CreatedAt:      time.Now().UTC(),
	}
	if receipt != nil {
		updated.BaseInterpreter = receipt.BaseInterpreter
		updated.CreatedAt = receipt.CreatedAt
	}
	if err := writeReceipt(layout.EnvDir, updated); err != nil {
		return true, err
	}
	return true, nil
}

// populate upgrades the environment's package tooling and installs the
// declared dependencies into the staged environment. Returns whether the
// dependencies are known present and the manifest hash ("" without manifest).
func (p *Provisioner) populate(ctx context.Context, staging, manifestPath string) (bool, string, error) {
	envPy := p.Platform.EnvInterpreterPath(staging)

	upgradeCtx, cancel := context.WithTimeout(ctx, p.InstallTimeout)
	defer cancel()
	if err := p.runner()(upgradeCtx, envPy, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return false, "", &DepsInstallError{ManifestPath: manifestPath, Cause: fmt.Errorf("pip upgrade: %w", err)}
	}

	if !fileExists(manifestPath) {
		// Not an error: an app without declared dependencies is complete as-is.
		p.Logger.Info("no dependency manifest, skipping install", "path", manifestPath)
		return true, "", nil
	}

	if err := p.installDeps(ctx, staging, manifestPath); err != nil {
		return false, "", err
	}

	hash, err := hashFile(manifestPath)
	if err != nil {
		// Without the hash the receipt cannot prove the install matches the
		// manifest; report it like a failed install so setup repairs it.
		return false, "", &DepsInstallError{ManifestPath: manifestPath, Cause: fmt.Errorf("hash manifest: %w", err)}
	}
	return true, hash, nil
}

// installDeps runs the dependency install into the environment rooted at
// envDir (staged or published).
func (p *Provisioner) installDeps(ctx context.Context, envDir, manifestPath string) error {
	installCtx, cancel := context.WithTimeout(ctx, p.InstallTimeout)
	defer cancel()

	envPy := p.Platform.EnvInterpreterPath(envDir)
	if err := p.runner()(installCtx, envPy, "-m", "pip", "install", "-r", manifestPath); err != nil {
		return &DepsInstallError{ManifestPath: manifestPath, Cause: err}
	}
	return nil
}

// execRun is the production runFunc: run the command to completion, folding
// its output into the error on failure.
func execRun(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, lastLine(msg))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// lastLine returns the final non-empty line of s, which for pip/venv output
// is where the actual error lives.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return s
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
