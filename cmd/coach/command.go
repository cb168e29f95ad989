package main

import (
	"fmt"
	"strings"
)

type commandKind int

const (
	cmdText commandKind = iota
	cmdNew
	cmdList
	cmdSwitch
	cmdRename
	cmdDelete
	cmdMode
	cmdScenarios
	cmdScenario
	cmdImage
	cmdHistory
	cmdStatus
	cmdHelp
	cmdQuit
)

// command is one parsed REPL line. Arg keeps the raw remainder after the verb.
type command struct {
	Kind commandKind
	Arg  string
}

type verbSpec struct {
	kind     commandKind
	needsArg bool
	usage    string
	help     string
}

var verbs = map[string]verbSpec{
	"/new":       {cmdNew, false, "/new [title]", "start a new session"},
	"/list":      {cmdList, false, "/list", "list sessions, newest first"},
	"/switch":    {cmdSwitch, true, "/switch <n|id>", "switch to a session by list number or id"},
	"/rename":    {cmdRename, true, "/rename <title>", "rename the active session"},
	"/delete":    {cmdDelete, false, "/delete", "delete the active session"},
	"/mode":      {cmdMode, true, "/mode tldr|full", "set reply verbosity"},
	"/scenarios": {cmdScenarios, false, "/scenarios", "list example chart scenarios"},
	"/scenario":  {cmdScenario, true, "/scenario <id>", "submit an example scenario"},
	"/image":     {cmdImage, true, "/image <path>", "upload a chart screenshot"},
	"/history":   {cmdHistory, false, "/history", "show the active session transcript"},
	"/status":    {cmdStatus, false, "/status", "show the active session state"},
	"/help":      {cmdHelp, false, "/help", "show this help"},
	"/quit":      {cmdQuit, false, "/quit", "exit"},
	"/exit":      {cmdQuit, false, "", ""},
}

var helpOrder = []string{
	"/new", "/list", "/switch", "/rename", "/delete", "/mode",
	"/scenarios", "/scenario", "/image", "/history", "/status", "/help", "/quit",
}

// parseCommand turns a REPL line into a command. Lines not starting with "/"
// are text turns; an empty line yields ok=false.
func parseCommand(line string) (cmd command, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return command{Kind: cmdText, Arg: line}, true, nil
	}

	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	spec, found := verbs[strings.ToLower(verb)]
	if !found {
		return command{}, false, fmt.Errorf("unknown command %s (try /help)", verb)
	}
	if spec.needsArg && arg == "" {
		return command{}, false, fmt.Errorf("usage: %s", spec.usage)
	}
	return command{Kind: spec.kind, Arg: arg}, true, nil
}

func helpText() string {
	var b strings.Builder
	for _, verb := range helpOrder {
		spec := verbs[verb]
		fmt.Fprintf(&b, "  %-18s %s\n", spec.usage, spec.help)
	}
	b.WriteString("  anything else      ask the coach\n")
	return b.String()
}
