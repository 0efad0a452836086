// SPDX-License-Identifier: MPL-2.0

package shortcut

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"bootlace-cli/internal/locator"
	"bootlace-cli/internal/platform"

	"github.com/charmbracelet/log"
)

// fakePlatform resolves shortcut locations into temp dirs and records links as
// plain files.
type fakePlatform struct {
	desktopDir string
	appsDir    string
	desktopErr error
	appsErr    error
	writeErr   error
	writes     []string
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) LauncherCandidates(envDir string) []locator.Candidate { return nil }

func (f *fakePlatform) BaseInterpreterCandidates() []locator.Candidate { return nil }

func (f *fakePlatform) EnvInterpreterPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

func (f *fakePlatform) EnvWindowedPath(envDir string) string {
	return filepath.Join(envDir, "bin", "python")
}

func (f *fakePlatform) EnvBinDir(envDir string) string { return filepath.Join(envDir, "bin") }

func (f *fakePlatform) DesktopDir() (string, error) { return f.desktopDir, f.desktopErr }

func (f *fakePlatform) ApplicationsDir() (string, error) { return f.appsDir, f.appsErr }

func (f *fakePlatform) ShortcutPath(name, dir string) string {
	return filepath.Join(dir, name+".link")
}

func (f *fakePlatform) WriteShortcut(spec platform.ShortcutSpec, dir string) (string, error) {
	if f.writeErr != nil {
		return "", f.writeErr
	}
	path := f.ShortcutPath(spec.Name, dir)
	if err := os.WriteFile(path, []byte(spec.Target), 0o755); err != nil {
		return "", err
	}
	f.writes = append(f.writes, path)
	return path, nil
}

func newTestInstaller(t *testing.T) (*Installer, *fakePlatform) {
	t.Helper()
	plat := &fakePlatform{desktopDir: t.TempDir(), appsDir: t.TempDir()}
	return New(plat, log.NewWithOptions(io.Discard, log.Options{})), plat
}

func spec() platform.ShortcutSpec {
	return platform.ShortcutSpec{
		Name:       "My App",
		Target:     "/usr/local/bin/bootlace",
		Args:       []string{"run", "/opt/myapp"},
		WorkingDir: "/opt/myapp",
	}
}

func TestInstallBothLocations(t *testing.T) {
	inst, plat := newTestInstaller(t)

	res, err := inst.Install(spec(), DefaultOptions())
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("Created = %v, want desktop and menu links", res.Created)
	}
	for _, p := range res.Created {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("created link missing: %v", err)
		}
	}
	if len(plat.writes) != 2 {
		t.Errorf("writes = %v, want 2", plat.writes)
	}
}

func TestInstallSkipsExistingWithoutForce(t *testing.T) {
	inst, _ := newTestInstaller(t)

	if _, err := inst.Install(spec(), DefaultOptions()); err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	res, err := inst.Install(spec(), DefaultOptions())
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if len(res.Created) != 0 {
		t.Errorf("Created = %v on re-install, want none", res.Created)
	}
	if len(res.Skipped) != 2 {
		t.Errorf("Skipped = %v, want both existing links", res.Skipped)
	}
}

func TestInstallForceOverwrites(t *testing.T) {
	inst, _ := newTestInstaller(t)

	if _, err := inst.Install(spec(), DefaultOptions()); err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	opts := DefaultOptions()
	opts.Force = true
	res, err := inst.Install(spec(), opts)
	if err != nil {
		t.Fatalf("forced Install() error = %v", err)
	}
	if len(res.Created) != 2 {
		t.Errorf("Created = %v with force, want both links rewritten", res.Created)
	}
}

func TestInstallDesktopOnly(t *testing.T) {
	inst, plat := newTestInstaller(t)

	res, err := inst.Install(spec(), Options{Desktop: true})
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("Created = %v, want the desktop link only", res.Created)
	}
	if got := filepath.Dir(res.Created[0]); got != plat.desktopDir {
		t.Errorf("link dir = %q, want desktop dir %q", got, plat.desktopDir)
	}
}

func TestInstallUnresolvableLocationIsSkipped(t *testing.T) {
	inst, plat := newTestInstaller(t)
	plat.desktopErr = errors.New("no desktop on this host")

	res, err := inst.Install(spec(), DefaultOptions())
	if err != nil {
		t.Fatalf("Install() error = %v, want unresolvable location skipped", err)
	}
	if len(res.Created) != 1 {
		t.Errorf("Created = %v, want the menu link only", res.Created)
	}
}

func TestInstallNoLocationResolvable(t *testing.T) {
	inst, plat := newTestInstaller(t)
	plat.desktopErr = errors.New("no desktop")
	plat.appsErr = errors.New("no menu")

	_, err := inst.Install(spec(), DefaultOptions())
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("Install() error = %v, want ErrNoLocation", err)
	}
}

func TestInstallWriteFailure(t *testing.T) {
	inst, plat := newTestInstaller(t)
	plat.writeErr = errors.New("format rejected")

	_, err := inst.Install(spec(), DefaultOptions())
	if !errors.Is(err, ErrInstallFailed) {
		t.Fatalf("Install() error = %v, want ErrInstallFailed", err)
	}
}

func TestInstallNoLocationsRequested(t *testing.T) {
	inst, _ := newTestInstaller(t)

	_, err := inst.Install(spec(), Options{})
	if !errors.Is(err, ErrNoLocation) {
		t.Fatalf("Install() error = %v, want ErrNoLocation", err)
	}
}
