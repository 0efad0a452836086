// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bootlace-cli/internal/config"
	"bootlace-cli/internal/launchfile"
	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/platform"

	"github.com/charmbracelet/log"
)

// fakePlatform implements platform.Platform against a plain directory tree so
// provisioning can be exercised without any interpreter on the machine.
type fakePlatform struct {
	baseCandidates []locator.Candidate
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) LauncherCandidates(envDir string) []locator.Candidate {
	return []locator.Candidate{locator.FileCandidate("env python", f.EnvInterpreterPath(envDir))}
}

func (f *fakePlatform) BaseInterpreterCandidates() []locator.Candidate {
	return f.baseCandidates
}

func (f *fakePlatform) EnvInterpreterPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

func (f *fakePlatform) EnvWindowedPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

func (f *fakePlatform) EnvBinDir(envDir string) string {
	return filepath.Join(envDir, "bin")
}

func (f *fakePlatform) DesktopDir() (string, error) { return "", errors.New("not supported") }

func (f *fakePlatform) ApplicationsDir() (string, error) { return "", errors.New("not supported") }

func (f *fakePlatform) ShortcutPath(name, dir string) string {
	return filepath.Join(dir, name+".link")
}

func (f *fakePlatform) WriteShortcut(spec platform.ShortcutSpec, dir string) (string, error) {
	return "", errors.New("not supported")
}

// foundBase returns a candidate cascade whose first entry always resolves.
func foundBase() []locator.Candidate {
	return []locator.Candidate{{
		Name:   "python3",
		Detect: func() (string, bool) { return "/usr/bin/python3", true },
	}}
}

// noBase returns a candidate cascade where nothing resolves.
func noBase() []locator.Candidate {
	return []locator.Candidate{
		{Name: "py", Detect: func() (string, bool) { return "", false }},
		{Name: "python3", Detect: func() (string, bool) { return "", false }},
	}
}

// call records one subprocess invocation handed to the fake runner.
type call struct {
	name string
	args []string
}

// fakeRunner simulates the venv/pip subprocesses by mutating the staging
// directory directly.
type fakeRunner struct {
	plat  *fakePlatform
	calls []call
	// failOn makes the runner fail any command whose args contain the
	// given substring.
	failOn string
}

func (r *fakeRunner) run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: args})
	joined := strings.Join(args, " ")
	if r.failOn != "" && strings.Contains(joined, r.failOn) {
		return errors.New("simulated subprocess failure")
	}
	// "python -m venv <dir>" materializes the environment skeleton.
	if strings.Contains(joined, "-m venv") {
		dir := args[len(args)-1]
		gate := r.plat.EnvInterpreterPath(dir)
		if err := os.MkdirAll(filepath.Dir(gate), 0o755); err != nil {
			return err
		}
		return os.WriteFile(gate, []byte("#!fake\n"), 0o755)
	}
	return nil
}

func (r *fakeRunner) installCalls() []call {
	var out []call
	for _, c := range r.calls {
		if strings.Contains(strings.Join(c.args, " "), "install -r") {
			out = append(out, c)
		}
	}
	return out
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// newTestProvisioner wires a Provisioner to the fake platform and runner.
func newTestProvisioner(plat *fakePlatform, runner *fakeRunner, policy config.DepsPolicy) *Provisioner {
	return &Provisioner{
		Platform:       plat,
		Policy:         policy,
		CreateTimeout:  time.Minute,
		InstallTimeout: time.Minute,
		Logger:         quietLogger(),
		Run:            runner.run,
	}
}

// testLayout builds a Layout rooted in a temp dir, with or without a manifest.
func testLayout(t *testing.T, withManifest bool) launchfile.Layout {
	t.Helper()
	appDir := t.TempDir()
	layout := launchfile.Layout{
		AppDir:       appDir,
		EnvDir:       filepath.Join(appDir, ".venv"),
		ManifestPath: filepath.Join(appDir, "requirements.txt"),
		EntryPath:    filepath.Join(appDir, "main.py"),
	}
	if withManifest {
		if err := os.WriteFile(layout.ManifestPath, []byte("requests==2.32.0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return layout
}

func TestEnsureCreatesEnvironment(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if res.Status != StatusCreated {
		t.Errorf("Status = %q, want %q", res.Status, StatusCreated)
	}
	if res.BaseInterpreter != "/usr/bin/python3" {
		t.Errorf("BaseInterpreter = %q, want /usr/bin/python3", res.BaseInterpreter)
	}
	if !res.DepsInstalled {
		t.Error("DepsInstalled = false, want true")
	}

	if !fileExists(plat.EnvInterpreterPath(layout.EnvDir)) {
		t.Error("environment interpreter missing after Ensure()")
	}
	if _, err := os.Stat(layout.EnvDir + stagingSuffix); !os.IsNotExist(err) {
		t.Error("staging directory left behind after publish")
	}
	if got := len(runner.installCalls()); got != 1 {
		t.Errorf("dependency install calls = %d, want 1", got)
	}

	receipt, err := readReceipt(layout.EnvDir)
	if err != nil {
		t.Fatalf("readReceipt() error = %v", err)
	}
	if receipt == nil {
		t.Fatal("no receipt written into published environment")
	}
	if !receipt.DepsInstalled {
		t.Error("receipt DepsInstalled = false, want true")
	}
	if receipt.ManifestSHA256 == "" {
		t.Error("receipt ManifestSHA256 is empty, want manifest hash")
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	if _, err := p.Ensure(context.Background(), layout); err != nil {
		t.Fatalf("first Ensure() error = %v", err)
	}
	firstCalls := len(runner.calls)

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}
	if res.Status != StatusAlreadyPresent {
		t.Errorf("second Status = %q, want %q", res.Status, StatusAlreadyPresent)
	}
	if len(runner.calls) != firstCalls {
		t.Errorf("second Ensure() ran %d subprocesses, want 0", len(runner.calls)-firstCalls)
	}
}

func TestEnsureWithoutManifest(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, false)

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if res.Status != StatusCreated {
		t.Errorf("Status = %q, want %q", res.Status, StatusCreated)
	}
	if !res.DepsInstalled {
		t.Error("DepsInstalled = false for manifest-less app, want true")
	}
	if got := len(runner.installCalls()); got != 0 {
		t.Errorf("dependency install calls = %d, want 0 without manifest", got)
	}
}

func TestEnsureNoBaseRuntime(t *testing.T) {
	plat := &fakePlatform{baseCandidates: noBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	res, err := p.Ensure(context.Background(), layout)
	if !errors.Is(err, ErrNoBaseRuntime) {
		t.Fatalf("Ensure() error = %v, want ErrNoBaseRuntime", err)
	}
	if res.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", res.Status, StatusFailed)
	}

	var nbr *NoBaseRuntimeError
	if !errors.As(err, &nbr) {
		t.Fatalf("error is %T, want *NoBaseRuntimeError", err)
	}
	if len(nbr.Probed) != 2 {
		t.Errorf("Probed = %v, want the two candidate names", nbr.Probed)
	}
	if len(runner.calls) != 0 {
		t.Errorf("ran %d subprocesses despite missing base interpreter", len(runner.calls))
	}
}

func TestEnsureCreationFailureDiscardsStaging(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat, failOn: "-m venv"}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	_, err := p.Ensure(context.Background(), layout)
	if !errors.Is(err, ErrEnvCreationFailed) {
		t.Fatalf("Ensure() error = %v, want ErrEnvCreationFailed", err)
	}

	if _, statErr := os.Stat(layout.EnvDir); !os.IsNotExist(statErr) {
		t.Error("environment directory published despite creation failure")
	}
	if _, statErr := os.Stat(layout.EnvDir + stagingSuffix); !os.IsNotExist(statErr) {
		t.Error("staging directory left behind after creation failure")
	}
}

func TestEnsureDepsFailureBestEffort(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat, failOn: "install -r"}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure() error = %v, want publish under best-effort policy", err)
	}
	if res.Status != StatusCreated {
		t.Errorf("Status = %q, want %q", res.Status, StatusCreated)
	}
	if res.DepsInstalled {
		t.Error("DepsInstalled = true despite failed install")
	}

	receipt, err := readReceipt(layout.EnvDir)
	if err != nil || receipt == nil {
		t.Fatalf("readReceipt() = %v, %v", receipt, err)
	}
	if receipt.DepsInstalled {
		t.Error("receipt claims deps installed despite failure")
	}
}

func TestEnsureManifestVanishingDuringInstall(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	// The manifest disappears mid-install, so its hash can no longer be
	// recorded. The receipt must not claim the install is proven.
	p.Run = func(ctx context.Context, name string, args ...string) error {
		if strings.Contains(strings.Join(args, " "), "install -r") {
			if err := os.Remove(layout.ManifestPath); err != nil {
				return err
			}
		}
		return runner.run(ctx, name, args...)
	}

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure() error = %v, want publish under best-effort policy", err)
	}
	if res.DepsInstalled {
		t.Error("DepsInstalled = true, want false when the manifest hash is unknown")
	}

	receipt, err := readReceipt(layout.EnvDir)
	if err != nil || receipt == nil {
		t.Fatalf("readReceipt() = %v, %v", receipt, err)
	}
	if receipt.DepsInstalled {
		t.Error("receipt claims deps installed despite unrecorded manifest hash")
	}
	if receipt.ManifestSHA256 != "" {
		t.Errorf("receipt ManifestSHA256 = %q, want empty", receipt.ManifestSHA256)
	}
}

func TestEnsureDepsFailureFailFast(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat, failOn: "install -r"}
	p := newTestProvisioner(plat, runner, config.DepsPolicyFailFast)
	layout := testLayout(t, true)

	_, err := p.Ensure(context.Background(), layout)
	if !errors.Is(err, ErrDepsInstallFailed) {
		t.Fatalf("Ensure() error = %v, want ErrDepsInstallFailed", err)
	}
	if _, statErr := os.Stat(layout.EnvDir); !os.IsNotExist(statErr) {
		t.Error("environment directory published under fail-fast policy")
	}
}

func TestEnsureRemovesStaleStaging(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, false)

	// Leftover from an interrupted earlier run.
	stale := layout.EnvDir + stagingSuffix
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stale, "junk"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := p.Ensure(context.Background(), layout)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if res.Status != StatusCreated {
		t.Errorf("Status = %q, want %q", res.Status, StatusCreated)
	}
	if fileExists(filepath.Join(layout.EnvDir, "junk")) {
		t.Error("stale staging content survived into the published environment")
	}
}

func TestSyncDepsRepairsFailedInstall(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat, failOn: "install -r"}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	if _, err := p.Ensure(context.Background(), layout); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	// The install works on the second attempt.
	runner.failOn = ""
	changed, err := p.SyncDeps(context.Background(), layout)
	if err != nil {
		t.Fatalf("SyncDeps() error = %v", err)
	}
	if !changed {
		t.Error("SyncDeps() = false, want repair of failed install")
	}

	receipt, err := readReceipt(layout.EnvDir)
	if err != nil || receipt == nil {
		t.Fatalf("readReceipt() = %v, %v", receipt, err)
	}
	if !receipt.DepsInstalled {
		t.Error("receipt still records failed install after SyncDeps()")
	}
}

func TestSyncDepsNoopWhenCurrent(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	if _, err := p.Ensure(context.Background(), layout); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	before := len(runner.calls)

	changed, err := p.SyncDeps(context.Background(), layout)
	if err != nil {
		t.Fatalf("SyncDeps() error = %v", err)
	}
	if changed {
		t.Error("SyncDeps() = true for up-to-date environment, want false")
	}
	if len(runner.calls) != before {
		t.Error("SyncDeps() ran subprocesses for up-to-date environment")
	}
}

func TestSyncDepsReinstallsOnManifestChange(t *testing.T) {
	plat := &fakePlatform{baseCandidates: foundBase()}
	runner := &fakeRunner{plat: plat}
	p := newTestProvisioner(plat, runner, config.DepsPolicyBestEffort)
	layout := testLayout(t, true)

	if _, err := p.Ensure(context.Background(), layout); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	if err := os.WriteFile(layout.ManifestPath, []byte("requests==2.32.0\nrich==13.7.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed, err := p.SyncDeps(context.Background(), layout)
	if err != nil {
		t.Fatalf("SyncDeps() error = %v", err)
	}
	if !changed {
		t.Error("SyncDeps() = false after manifest change, want reinstall")
	}
	if got := len(runner.installCalls()); got != 2 {
		t.Errorf("dependency install calls = %d, want 2 (initial + resync)", got)
	}
}
