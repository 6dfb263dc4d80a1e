package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/feed"
)

var testURLs = FeedURLs{Base: "http://feeds.test/1.0"}

var twoSongs = []domain.SongEntry{
	{Title: "First", Link: "http://songza.com/s/1"},
	{Title: "Second & Last", Link: "http://songza.com/s/2"},
}

func TestFeedURLs(t *testing.T) {
	u := FeedURLs{Base: "http://api.songza.com/1.0/"}
	if got, want := u.SongList("top"), "http://api.songza.com/1.0/public_feed/top.xml"; got != want {
		t.Errorf("SongList() = %s, want %s", got, want)
	}
	if got, want := u.Playlist("bob12"), "http://api.songza.com/1.0/feed/bob12.xml"; got != want {
		t.Errorf("Playlist() = %s, want %s", got, want)
	}
	if got, want := u.SongList("a b/c"), "http://api.songza.com/1.0/public_feed/a%20b%2Fc.xml"; got != want {
		t.Errorf("SongList() = %s, want %s", got, want)
	}
}

func TestWorker_SongList(t *testing.T) {
	tests := []struct {
		name      string
		postfix   string
		doc       *domain.FeedDocument
		want      []hostCall
		wantFetch bool
	}{
		{
			name:    "two songs",
			postfix: "top",
			doc:     &domain.FeedDocument{Root: domain.RootPublicFeed, Name: "Top Songs", Songs: twoSongs},
			want: []hostCall{
				{method: "display", args: []string{msgFetchingSongList}},
				{method: "insert", args: []string{feed.BuildList(twoSongs), domain.SongListCommandName}},
				{method: "display", args: []string{msgSongListTitle("Top Songs")}},
			},
			wantFetch: true,
		},
		{
			name:    "empty postfix",
			postfix: "",
			want: []hostCall{
				{method: "display", args: []string{msgNoSongList}},
			},
		},
		{
			name:    "blank postfix",
			postfix: "   ",
			want: []hostCall{
				{method: "display", args: []string{msgNoSongList}},
			},
		},
		{
			name:    "feed absent",
			postfix: "top",
			want: []hostCall{
				{method: "display", args: []string{msgFetchingSongList}},
				{method: "display", args: []string{msgSongListFailed}},
			},
			wantFetch: true,
		},
		{
			name:    "wrong root",
			postfix: "top",
			doc:     &domain.FeedDocument{Root: domain.RootUserFeed, Songs: twoSongs},
			want: []hostCall{
				{method: "display", args: []string{msgFetchingSongList}},
				{method: "display", args: []string{msgSongListFailed}},
			},
			wantFetch: true,
		},
		{
			name:    "no songs still inserts",
			postfix: "top",
			doc:     &domain.FeedDocument{Root: domain.RootPublicFeed, Name: "Top"},
			want: []hostCall{
				{method: "display", args: []string{msgFetchingSongList}},
				{method: "insert", args: []string{"", domain.SongListCommandName}},
				{method: "display", args: []string{msgSongListTitle("Top")}},
			},
			wantFetch: true,
		},
		{
			name:    "missing name falls back to identifier",
			postfix: "featured",
			doc:     &domain.FeedDocument{Root: domain.RootPublicFeed, Songs: twoSongs[:1]},
			want: []hostCall{
				{method: "display", args: []string{msgFetchingSongList}},
				{method: "insert", args: []string{feed.BuildList(twoSongs[:1]), domain.SongListCommandName}},
				{method: "display", args: []string{msgSongListTitle("featured")}},
			},
			wantFetch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &recordingHost{}
			fetcher := newFakeFetcher()
			id := strings.TrimSpace(tt.postfix)
			if tt.doc != nil {
				fetcher.docs[testURLs.SongList(id)] = *tt.doc
			}

			w := NewWorker(host, fetcher, testURLs)
			w.Run(context.Background(), nil, domain.Invocation{Command: domain.CommandSongList, Postfix: tt.postfix})

			if got := host.Calls(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("host calls = %#v, want %#v", got, tt.want)
			}
			fetched := fetcher.Fetched()
			if tt.wantFetch && !reflect.DeepEqual(fetched, []string{testURLs.SongList(id)}) {
				t.Errorf("fetched = %v, want one fetch of %s", fetched, testURLs.SongList(id))
			}
			if !tt.wantFetch && len(fetched) != 0 {
				t.Errorf("fetched = %v, want none", fetched)
			}
		})
	}
}

func TestWorker_Playlist(t *testing.T) {
	tests := []struct {
		name      string
		selection string
		doc       *domain.FeedDocument
		want      []hostCall
		wantFetch string
	}{
		{
			name:      "songs",
			selection: " bob12 ",
			doc:       &domain.FeedDocument{Root: domain.RootUserFeed, Songs: twoSongs},
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgFetchingPlaylist("bob12")}},
				{method: "insert", args: []string{feed.BuildList(twoSongs), domain.PlaylistCommandName}},
				{method: "display", args: []string{msgPlaylistTitle("bob12")}},
			},
			wantFetch: testURLs.Playlist("bob12"),
		},
		{
			name:      "empty selection",
			selection: "",
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgNoUsername}},
			},
		},
		{
			name:      "too short",
			selection: "ab",
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgInvalidUsername}},
			},
		},
		{
			name:      "underscore",
			selection: "user_name",
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgInvalidUsername}},
			},
		},
		{
			name:      "feed absent",
			selection: "bob12",
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgFetchingPlaylist("bob12")}},
				{method: "display", args: []string{msgPlaylistFailed("bob12")}},
			},
			wantFetch: testURLs.Playlist("bob12"),
		},
		{
			name:      "no songs",
			selection: "bob12",
			doc:       &domain.FeedDocument{Root: domain.RootUserFeed},
			want: []hostCall{
				{method: "selection"},
				{method: "display", args: []string{msgFetchingPlaylist("bob12")}},
				{method: "display", args: []string{msgPlaylistEmpty("bob12")}},
			},
			wantFetch: testURLs.Playlist("bob12"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &recordingHost{selection: tt.selection}
			fetcher := newFakeFetcher()
			if tt.doc != nil {
				fetcher.docs[testURLs.Playlist(strings.TrimSpace(tt.selection))] = *tt.doc
			}

			w := NewWorker(host, fetcher, testURLs)
			w.Run(context.Background(), nil, domain.Invocation{Command: domain.CommandPlaylist, Postfix: "ignored"})

			if got := host.Calls(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("host calls = %#v, want %#v", got, tt.want)
			}
			fetched := fetcher.Fetched()
			switch {
			case tt.wantFetch == "" && len(fetched) != 0:
				t.Errorf("fetched = %v, want none", fetched)
			case tt.wantFetch != "" && !reflect.DeepEqual(fetched, []string{tt.wantFetch}):
				t.Errorf("fetched = %v, want [%s]", fetched, tt.wantFetch)
			}
		})
	}
}

func TestWorker_SelectionError(t *testing.T) {
	host := &recordingHost{selErr: errors.New("host gone")}
	fetcher := newFakeFetcher()

	w := NewWorker(host, fetcher, testURLs)
	last := w.Run(context.Background(), nil, domain.Invocation{Command: domain.CommandPlaylist})

	if last != StageFetchingInput {
		t.Errorf("last stage = %v, want %v", last, StageFetchingInput)
	}
	if got := host.Calls(); len(got) != 1 {
		t.Errorf("host calls = %#v, want only the selection call", got)
	}
}

func TestWorker_InsertErrorSkipsSuccessMessage(t *testing.T) {
	host := &recordingHost{insertErr: errors.New("no cursor")}
	fetcher := newFakeFetcher()
	fetcher.docs[testURLs.SongList("top")] = domain.FeedDocument{Root: domain.RootPublicFeed, Name: "Top", Songs: twoSongs}

	w := NewWorker(host, fetcher, testURLs)
	last := w.Run(context.Background(), nil, domain.Invocation{Command: domain.CommandSongList, Postfix: "top"})

	if last != StageReporting {
		t.Errorf("last stage = %v, want %v", last, StageReporting)
	}
	calls := host.Calls()
	if n := len(calls); n != 2 || calls[1].method != "insert" {
		t.Errorf("host calls = %#v, want fetching status then insert", calls)
	}
}

func TestMessages_EscapeRemoteNames(t *testing.T) {
	got := msgSongListTitle("<b>Rock & Roll</b>")
	want := "<p>&lt;b&gt;Rock &amp; Roll&lt;/b&gt;</p><caption>at Songza.com</caption>"
	if got != want {
		t.Errorf("msgSongListTitle() = %s, want %s", got, want)
	}
}

func TestStage_String(t *testing.T) {
	if StageFetchingInput.String() != "fetching_input" || StageDone.String() != "done" || Stage(99).String() != "unknown" {
		t.Error("unexpected Stage labels")
	}
}
