package domain

import "fmt"

// Host-visible command names.
const (
	SongListCommandName = "songza list {song list}"
	PlaylistCommandName = "songza playlist"
)

// Command is the closed set of commands this service implements.
type Command int

const (
	CommandUnknown Command = iota
	CommandSongList
	CommandPlaylist
)

// ParseCommand resolves a host command name.
// Unknown names return CommandUnknown and an error wrapping ErrUnknownCommand.
func ParseCommand(name string) (Command, error) {
	switch name {
	case SongListCommandName:
		return CommandSongList, nil
	case PlaylistCommandName:
		return CommandPlaylist, nil
	default:
		return CommandUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// Name returns the name the host knows the command by.
func (c Command) Name() string {
	switch c {
	case CommandSongList:
		return SongListCommandName
	case CommandPlaylist:
		return PlaylistCommandName
	default:
		return ""
	}
}

// String returns a short label suitable for logs and metric labels.
func (c Command) String() string {
	switch c {
	case CommandSongList:
		return "list"
	case CommandPlaylist:
		return "playlist"
	default:
		return "unknown"
	}
}

// Invocation is one host call of a command, consumed by the worker it starts.
type Invocation struct {
	Command Command
	Postfix string
}

// ArgumentPolicy describes what postfix a command accepts.
type ArgumentPolicy int

const (
	PolicyNone ArgumentPolicy = iota
	PolicyBounded
	PolicyFree
)

// Tag returns the wire value the host expects in registerCommand.
func (p ArgumentPolicy) Tag() string {
	switch p {
	case PolicyBounded:
		return "bounded"
	case PolicyFree:
		return "free"
	default:
		return "none"
	}
}

// RegisteredCommand is a command as announced to the host.
// A PolicyBounded command must have ValidArguments pushed after registration.
type RegisteredCommand struct {
	Name           string
	Description    string
	HelpMarkup     string
	Policy         ArgumentPolicy
	ValidArguments []string
}

// Commands returns both commands in registration order. songLists becomes the
// valid-argument set of the bounded list command.
func Commands(songLists []string) []RegisteredCommand {
	lists := make([]string, len(songLists))
	copy(lists, songLists)

	return []RegisteredCommand{
		{
			Name:           SongListCommandName,
			Description:    "Retrieves song lists from Songza.",
			HelpMarkup:     "<p>Retrieves song lists from Songza.</p>",
			Policy:         PolicyBounded,
			ValidArguments: lists,
		},
		{
			Name:        PlaylistCommandName,
			Description: "Retrieves a Songza user's playlist from Songza.",
			HelpMarkup:  "<p>Retrieves a Songza user's playlist from Songza.</p>",
			Policy:      PolicyNone,
		},
	}
}
