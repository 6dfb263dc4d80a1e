package app

import (
	"fmt"
	"html"
)

// Status fragments shown by the host.
const (
	msgNoSongList       = "<p>No song list!</p>"
	msgFetchingSongList = "<p>Fetching song list...</p><caption>from Songza.com</caption>"
	msgSongListFailed   = "<p>Couldn't download song list</p><caption>from Songza.com</caption>"
	msgNoUsername       = "<p>No Songza username selected!</p>"
	msgInvalidUsername  = "<p>Invalid Songza username selected!</p><caption>Songza.com usernames have between 3 and 16 alphanumeric characters</caption>"
)

func msgSongListTitle(name string) string {
	return fmt.Sprintf("<p>%s</p><caption>at Songza.com</caption>", html.EscapeString(name))
}

func msgFetchingPlaylist(user string) string {
	return fmt.Sprintf("<p>Fetching %s's playlist...</p><caption>from Songza.com</caption>", html.EscapeString(user))
}

func msgPlaylistFailed(user string) string {
	return fmt.Sprintf("<p>Couldn't download %s's playlist</p><caption>from Songza.com</caption>", html.EscapeString(user))
}

func msgPlaylistEmpty(user string) string {
	return fmt.Sprintf("<p>No songs on %s's playlist</p><caption>at Songza.com</caption>", html.EscapeString(user))
}

func msgPlaylistTitle(user string) string {
	return fmt.Sprintf("<p>Songs on %s's playlist</p><caption>at Songza.com</caption>", html.EscapeString(user))
}
