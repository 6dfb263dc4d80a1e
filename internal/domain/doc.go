// Package domain contains the core entities of the Songza command service.
//
// It has no dependencies on transport, HTTP or logging and holds only the
// rules the rest of the service relies on:
//
//   - [Command]: the closed set of host-invocable commands, resolved once from
//     the name the host sends
//   - [RegisteredCommand]: what is announced to the host at startup
//   - [FeedDocument] and [SongEntry]: a trusted, parsed remote feed
//   - [IsValidUsername]: the syntactic rule for Songza usernames
package domain
