package pillctl

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultShell runs the tail pipeline
const DefaultShell = "/bin/sh"

// Action is a terminal step handed back to the caller of HandleCommand.
// The caller replaces its process image with it and never resumes.
type Action struct {
	// Path is the executable to run
	Path string
	// Argv is the full argument vector, including argv[0]
	Argv []string
}

// String returns the command line of the action
func (a *Action) String() string {
	return strings.Join(a.Argv, " ")
}

// GrepPattern builds the extended regular expression that selects log lines
// tagged with application, or application:query when query is not empty.
// Log lines are expected to start with a bracketed tag.
func GrepPattern(application, query string) string {
	tag := application
	if query != "" {
		tag += ":" + query
	}
	return `\[.*` + escapePattern(tag) + `.*`
}

// escapePattern quotes regular expression metacharacters and the tag separator
func escapePattern(s string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(s), ":", `\:`)
}

// TailAction returns the action that follows the last lines of logFile,
// filtered by pattern
func TailAction(logFile, pattern string) *Action {
	pipeline := fmt.Sprintf("tail -n %d -f %s | grep -E %s",
		DefaultTailLines, shellQuote(logFile), shellQuote(pattern))
	return &Action{
		Path: DefaultShell,
		Argv: []string{"sh", "-c", pipeline},
	}
}

// shellQuote wraps s in single quotes for /bin/sh
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
