// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NoBaseRuntimeId Id = iota + 1
	EnvCreationFailedId
	DepsInstallFailedId
	RuntimeUnavailableId
	LaunchfileNotFoundId
	LaunchfileParseErrorId
	ConfigLoadFailedId
	ShortcutFailedId
	EntryNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	noBaseRuntimeIssue = &Issue{
		id: NoBaseRuntimeId,
		mdMsg: `
# No Python interpreter found!

bootlace needs a Python interpreter to create the app's isolated environment,
but neither the 'py' launcher nor 'python3'/'python' was found on this machine.

## Things you can try:
- Install Python from https://www.python.org/downloads/
  (on Windows, keep "py launcher" checked in the installer)
- On Linux: ` + "`sudo apt install python3 python3-venv`" + ` or ` + "`sudo dnf install python3`" + `
- On macOS: ` + "`brew install python3`" + `
- Verify the installation:
~~~
$ python3 --version
~~~
then run the app again.`,
		extLinks: []HttpLink{"https://www.python.org/downloads/"},
	}

	envCreationFailedIssue = &Issue{
		id: EnvCreationFailedId,
		mdMsg: `
# Environment creation failed!

A Python interpreter was found, but creating the app's isolated environment
(venv) did not succeed. Nothing was left behind: the partial environment is
discarded, and the next run will start provisioning from scratch.

## Common causes:
- The install directory is not writable
- The disk is full
- The 'venv' module is missing (Debian/Ubuntu split it out)

## Things you can try:
- On Debian/Ubuntu: ` + "`sudo apt install python3-venv`" + `
- Check free disk space and directory permissions
- Re-run with verbose output:
~~~
$ bootlace --verbose setup
~~~`,
	}

	depsInstallFailedIssue = &Issue{
		id: DepsInstallFailedId,
		mdMsg: `
# Dependency installation failed!

The isolated environment was created, but installing the packages declared in
the requirements file did not succeed. The environment was kept, so the app may
start but fail later on missing imports.

## Things you can try:
- Check your network connection (pip needs to reach the package index)
- Re-run the installation:
~~~
$ bootlace setup
~~~
  (setup notices the incomplete install and retries it)
- Make dependency failures fatal in your config:
~~~cue
setup: deps_policy: "fail-fast"
~~~`,
	}

	runtimeUnavailableIssue = &Issue{
		id: RuntimeUnavailableId,
		mdMsg: `
# No usable launcher found!

None of the launcher candidates is present on this machine, so the app cannot
be started.

## Candidates, in the order they are probed:
1. The windowed interpreter inside the app's isolated environment
2. The system 'py' version-selector launcher
3. A windowed interpreter ('pythonw' / 'python3') on PATH

## Things you can try:
- Install Python from https://www.python.org/downloads/
- Provision the app's environment first:
~~~
$ bootlace setup
~~~
- Inspect the cascade:
~~~
$ bootlace doctor
~~~`,
		extLinks: []HttpLink{"https://www.python.org/downloads/"},
	}

	launchfileNotFoundIssue = &Issue{
		id: LaunchfileNotFoundId,
		mdMsg: `
# No launchfile found!

The app directory does not contain a launchfile.cue, and no entry file was
found under the default name.

## Things you can try:
- Create a launchfile.cue next to the app's entry file:
~~~cue
name:  "My App"
entry: "main.py"
requirements: "requirements.txt"
~~~
- Or pass the app directory explicitly:
~~~
$ bootlace run /path/to/app
~~~`,
	}

	launchfileParseErrorIssue = &Issue{
		id: LaunchfileParseErrorId,
		mdMsg: `
# Failed to parse launchfile!

Your launchfile.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- An empty 'entry' field (entry is required)

## Example of a valid launchfile:
~~~cue
name:  "Daily Automation"
entry: "main.py"
requirements: "requirements.txt"
icon:  "app.ico"

hooks: post_setup: """
	echo "environment ready"
	"""
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the bootlace configuration file.

## Configuration file locations:
- Linux: ~/.config/bootlace/config.cue
- macOS: ~/Library/Application Support/bootlace/config.cue
- Windows: %APPDATA%\bootlace\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/bootlace/config.cue
~~~

## Example configuration:
~~~cue
setup: {
  auto: true
  deps_policy: "best-effort"
}

ui: verbose: false
~~~`,
	}

	shortcutFailedIssue = &Issue{
		id: ShortcutFailedId,
		mdMsg: `
# Shortcut installation failed!

The desktop shortcut could not be created.

## Common causes:
- No desktop directory could be resolved for this user
- The desktop directory is not writable
- On Windows: PowerShell is unavailable (it is used to write the .lnk file)

## Things you can try:
- Check that your desktop directory exists and is writable
- Re-run with verbose output:
~~~
$ bootlace --verbose shortcut
~~~`,
	}

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# App entry file not found!

A launcher is available, but the app's entry file does not exist.

## Things you can try:
- Check the 'entry' field in launchfile.cue points at an existing file
- Verify you are launching the right directory:
~~~
$ bootlace run /path/to/app
~~~`,
	}

	issues = map[Id]*Issue{
		noBaseRuntimeIssue.Id():        noBaseRuntimeIssue,
		envCreationFailedIssue.Id():    envCreationFailedIssue,
		depsInstallFailedIssue.Id():    depsInstallFailedIssue,
		runtimeUnavailableIssue.Id():   runtimeUnavailableIssue,
		launchfileNotFoundIssue.Id():   launchfileNotFoundIssue,
		launchfileParseErrorIssue.Id(): launchfileParseErrorIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		shortcutFailedIssue.Id():       shortcutFailedIssue,
		entryNotFoundIssue.Id():        entryNotFoundIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
