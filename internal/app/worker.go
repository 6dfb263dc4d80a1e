package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/feed"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/ports"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// DefaultFeedBaseURL is the Songza API root.
const DefaultFeedBaseURL = "http://api.songza.com/1.0"

// Stage is a step of a worker run.
type Stage int

const (
	StageStarted Stage = iota
	StageFetchingInput
	StageFetching
	StageValidating
	StageBuilding
	StageReporting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStarted:
		return "started"
	case StageFetchingInput:
		return "fetching_input"
	case StageFetching:
		return "fetching"
	case StageValidating:
		return "validating"
	case StageBuilding:
		return "building"
	case StageReporting:
		return "reporting"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// FeedURLs builds feed locations under Base.
type FeedURLs struct {
	Base string
}

// SongList returns the public feed URL for a song list identifier.
func (u FeedURLs) SongList(id string) string {
	return strings.TrimRight(u.Base, "/") + "/" + domain.RootPublicFeed + "/" + url.PathEscape(id) + ".xml"
}

// Playlist returns the user feed URL for a username.
func (u FeedURLs) Playlist(user string) string {
	return strings.TrimRight(u.Base, "/") + "/" + domain.RootUserFeed + "/" + url.PathEscape(user) + ".xml"
}

// Worker runs one command to completion, reporting the outcome to the host.
// A run emits at most one insertion and never returns an error: every
// failure ends in a status message.
type Worker struct {
	host    ports.Host
	fetcher ports.FeedFetcher
	urls    FeedURLs
}

// NewWorker creates a worker.
func NewWorker(host ports.Host, fetcher ports.FeedFetcher, urls FeedURLs) *Worker {
	return &Worker{
		host:    host,
		fetcher: fetcher,
		urls:    urls,
	}
}

// Run executes inv and returns the last stage reached before Done.
func (w *Worker) Run(ctx context.Context, logger log.Logger, inv domain.Invocation) Stage {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	r := &run{Worker: w, logger: logger.With(log.String("command", inv.Command.String()))}
	r.enter(StageStarted)

	switch inv.Command {
	case domain.CommandSongList:
		r.songList(ctx, inv.Postfix)
	case domain.CommandPlaylist:
		r.playlist(ctx)
	default:
		r.logger.Error("worker started for unknown command")
	}

	last := r.stage
	r.enter(StageDone)
	return last
}

type run struct {
	*Worker
	logger log.Logger
	stage  Stage
}

func (r *run) enter(s Stage) {
	r.stage = s
	r.logger.Debug("worker stage", log.String("stage", s.String()))
}

func (r *run) songList(ctx context.Context, postfix string) {
	id := strings.TrimSpace(postfix)
	if id == "" {
		r.enter(StageReporting)
		r.display(ctx, msgNoSongList)
		return
	}

	r.enter(StageFetching)
	r.display(ctx, msgFetchingSongList)

	doc, ok := r.fetcher.FetchAndValidate(ctx, r.urls.SongList(id), domain.RootPublicFeed)
	r.enter(StageValidating)
	if !ok {
		r.enter(StageReporting)
		r.display(ctx, msgSongListFailed)
		return
	}

	r.enter(StageBuilding)
	markup := feed.BuildList(doc.Songs)

	r.enter(StageReporting)
	if err := r.host.InsertAtCursor(ctx, markup, domain.SongListCommandName); err != nil {
		r.logger.Warn("insert at cursor failed", log.Err(err))
		return
	}

	name := doc.Name
	if name == "" {
		name = id
	}
	r.display(ctx, msgSongListTitle(name))
}

func (r *run) playlist(ctx context.Context) {
	r.enter(StageFetchingInput)
	selection, err := r.host.Selection(ctx)
	if err != nil {
		r.logger.Warn("get selection failed", log.Err(err))
		return
	}

	if selection == "" {
		r.enter(StageReporting)
		r.display(ctx, msgNoUsername)
		return
	}
	if !domain.IsValidUsername(selection) {
		r.enter(StageReporting)
		r.display(ctx, msgInvalidUsername)
		return
	}
	user := strings.TrimSpace(selection)

	r.enter(StageFetching)
	r.display(ctx, msgFetchingPlaylist(user))

	doc, ok := r.fetcher.FetchAndValidate(ctx, r.urls.Playlist(user), domain.RootUserFeed)
	r.enter(StageValidating)
	if !ok {
		r.enter(StageReporting)
		r.display(ctx, msgPlaylistFailed(user))
		return
	}
	if doc.Empty() {
		r.enter(StageReporting)
		r.display(ctx, msgPlaylistEmpty(user))
		return
	}

	r.enter(StageBuilding)
	markup := feed.BuildList(doc.Songs)

	r.enter(StageReporting)
	if err := r.host.InsertAtCursor(ctx, markup, domain.PlaylistCommandName); err != nil {
		r.logger.Warn("insert at cursor failed", log.Err(err))
		return
	}
	r.display(ctx, msgPlaylistTitle(user))
}

// display reports a status. Failures are logged; the host is best effort.
func (r *run) display(ctx context.Context, msg string) {
	if err := r.host.DisplayMessage(ctx, msg); err != nil {
		r.logger.Warn("display message failed", log.Err(err))
	}
}
