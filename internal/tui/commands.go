package tui

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Command represents a slash command.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
}

// CommandRegistry manages slash commands.
type CommandRegistry struct {
	commands map[string]*Command
	aliases  map[string]string
	names    []string
}

// NewCommandRegistry creates a registry with the default commands.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}

	r.Register(&Command{
		Name:        "help",
		Aliases:     []string{"h", "?"},
		Description: "Show available commands",
		Usage:       "/help [command]",
	})

	r.Register(&Command{
		Name:        "mode",
		Aliases:     []string{"m"},
		Description: "Pick a support mode (catalog, orders, issues, other)",
		Usage:       "/mode <id>",
	})

	r.Register(&Command{
		Name:        "copy",
		Aliases:     []string{"cp", "y"},
		Description: "Copy the last assistant reply to the clipboard",
		Usage:       "/copy",
	})

	r.Register(&Command{
		Name:        "export",
		Aliases:     []string{"save"},
		Description: "Export the transcript as markdown",
		Usage:       "/export [path]",
	})

	r.Register(&Command{
		Name:        "end",
		Aliases:     []string{"new", "reset"},
		Description: "End the chat and start a fresh conversation",
		Usage:       "/end",
	})

	r.Register(&Command{
		Name:        "quit",
		Aliases:     []string{"q", "exit"},
		Description: "Exit the chat",
		Usage:       "/quit",
	})

	return r
}

// Register adds a command to the registry.
func (r *CommandRegistry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	r.names = append(r.names, cmd.Name)
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
}

// Parse parses input and returns the command, arguments, and whether the
// input was a slash command at all.
func (r *CommandRegistry) Parse(input string) (*Command, []string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil, nil, false
	}

	parts := strings.Fields(input[1:])
	if len(parts) == 0 {
		return nil, nil, false
	}

	name := strings.ToLower(parts[0])
	args := parts[1:]

	if cmd, ok := r.commands[name]; ok {
		return cmd, args, true
	}
	if real, ok := r.aliases[name]; ok {
		return r.commands[real], args, true
	}
	return nil, args, true
}

// Suggest returns command suggestions for partial input using fuzzy matching.
func (r *CommandRegistry) Suggest(partial string) []string {
	partial = strings.ToLower(strings.TrimPrefix(partial, "/"))

	if partial == "" {
		result := make([]string, len(r.names))
		copy(result, r.names)
		sort.Strings(result)
		return result
	}

	all := make([]string, 0, len(r.names)+len(r.aliases))
	all = append(all, r.names...)
	for alias := range r.aliases {
		all = append(all, alias)
	}

	matches := fuzzy.Find(partial, all)
	seen := make(map[string]bool)
	result := make([]string, 0, len(matches))
	for _, match := range matches {
		name := match.Str
		if real, ok := r.aliases[name]; ok {
			name = real
		}
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	return result
}

// Help returns help text for one command or for all of them.
func (r *CommandRegistry) Help(name string) string {
	if name != "" {
		cmd := r.Get(name)
		if cmd == nil {
			return "Unknown command: " + name
		}
		var sb strings.Builder
		sb.WriteString(cmd.Usage)
		if len(cmd.Aliases) > 0 {
			sb.WriteString(" (aliases: ")
			sb.WriteString(strings.Join(cmd.Aliases, ", "))
			sb.WriteString(")")
		}
		sb.WriteString("\n")
		sb.WriteString(cmd.Description)
		return sb.String()
	}

	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, n := range names {
		cmd := r.commands[n]
		sb.WriteString("  ")
		sb.WriteString(cmd.Usage)
		sb.WriteString("  ")
		sb.WriteString(cmd.Description)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Get returns a command by name or alias.
func (r *CommandRegistry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if real, ok := r.aliases[name]; ok {
		return r.commands[real]
	}
	return nil
}
