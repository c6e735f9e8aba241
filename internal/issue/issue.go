// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Catalog entries. The zero Id means "no catalog entry".
const (
	ConfigLoadFailedId Id = iota + 1
	DependenciesNotSatisfiedId
	TargetNotFoundId
	PermissionDeniedId
	TargetStartFailedId
)

type (
	// Id identifies a catalog entry.
	//
	//nolint:revive // Id matches the catalog's historical naming
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// Issue is a help page shown after an error of a known kind.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded!

envrun reads ` + "`envrun.cue`" + ` from the current directory, or the file given with ` + "`--config`" + `.

## Things you can try:
- Check the error above for the offending field
- Print the effective configuration:
~~~
$ envrun config show
~~~
- Write a fresh configuration to start from:
~~~
$ envrun config init
~~~`,
	}

	dependenciesNotSatisfiedIssue = &Issue{
		id: DependenciesNotSatisfiedId,
		mdMsg: `
# Dependencies not satisfied!

The target was not started because some declared dependencies could not be found.

## Things you can try:
- Install the missing tools listed above, or enter the shell that provides them
- Add the directory holding them to ` + "`search_paths`" + `
- For ` + "`python:`" + ` dependencies, check that the module imports with the configured interpreter:
~~~
$ python3 -c 'import requests'
~~~
- See what resolves and where:
~~~
$ envrun check --verbose
~~~`,
	}

	targetNotFoundIssue = &Issue{
		id: TargetNotFoundId,
		mdMsg: `
# Target executable not found!

The target could not be located on the prepared PATH.

## Things you can try:
- Check ` + "`target.executable`" + ` in your configuration for typos
- Use an absolute path, or a path relative to ` + "`target.work_dir`" + `
- Declare the target as a dependency so missing tools are reported before the run`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

The target exists but could not be executed.

## Things you can try:
- Mark the file executable:
~~~
$ chmod +x path/to/target
~~~
- Run scripts through their interpreter instead (e.g. ` + "`executable: \"python3\"`" + `, ` + "`args: [\"main.py\"]`" + `)`,
	}

	targetStartFailedIssue = &Issue{
		id: TargetStartFailedId,
		mdMsg: `
# Target could not be started!

The operating system refused to start the target process.

## Things you can try:
- Run the target directly to see the underlying error
- Check ` + "`target.work_dir`" + ` exists`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		dependenciesNotSatisfiedIssue.Id(): dependenciesNotSatisfiedIssue,
		targetNotFoundIssue.Id():           targetNotFoundIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
		targetStartFailedIssue.Id():        targetStartFailedIssue,
	}
)

// Id returns the catalog id of the issue.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the Markdown body for a terminal using the given Glamour
// style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(strings.TrimSpace(string(i.mdMsg)), stylePath)
}

// Ids returns all catalog ids in ascending order.
func Ids() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
