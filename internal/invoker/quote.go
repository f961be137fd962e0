package invoker

import "strings"

// Quote wraps value in single quotes so a POSIX shell passes it through
// as exactly one word. Embedded single quotes close the quoted run, emit a
// double-quoted quote, and reopen it.
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// CommandLine builds the shell command line for one model invocation:
//
//	'<binary>' -m '<model>' -p '<prompt>'
func CommandLine(binary, model, prompt string) string {
	var b strings.Builder
	b.WriteString(Quote(binary))
	b.WriteString(" -m ")
	b.WriteString(Quote(model))
	b.WriteString(" -p ")
	b.WriteString(Quote(prompt))
	return b.String()
}
