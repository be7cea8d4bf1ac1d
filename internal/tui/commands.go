package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
)

// commandPrefix marks input that is a command rather than a message
const commandPrefix = "/"

var errUnknownCommand = errors.New("unknown command")

// command is parsed "/name args" input
type command struct {
	name string
	arg  string
}

func parseCommand(text string) (command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, commandPrefix) || len(text) == 1 {
		return command{}, false
	}
	name, arg, _ := strings.Cut(text[len(commandPrefix):], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// intent maps commands that are plain app intents. renaming is the session
// a rename applies to; empty means the current one.
func (c command) intent(renaming string) (app.Intent, error) {
	switch c.name {
	case "new":
		return app.NewSearch{}, nil
	case "rename":
		if c.arg == "" {
			return nil, errors.New("usage: /rename <title>")
		}
		return app.RenameSession{ID: renaming, Title: c.arg}, nil
	case "filter", "unfilter":
		tag := filter.Tag(strings.ToLower(c.arg))
		if !filter.Known(tag) {
			return nil, fmt.Errorf("unknown filter %q, try one of: %s", c.arg, knownTags())
		}
		if c.name == "filter" {
			return app.AddFilter{Tag: tag}, nil
		}
		return app.RemoveFilter{Tag: tag}, nil
	case "clear":
		return app.ClearFilters{}, nil
	}
	return nil, fmt.Errorf("%w: /%s", errUnknownCommand, c.name)
}

func knownTags() string {
	infos := filter.Tags()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, string(info.Tag))
	}
	return strings.Join(names, ", ")
}
