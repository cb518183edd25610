// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package services provides suture.Service wrappers for the long-running parts
of the server.

Each wrapper implements suture's context-aware Serve pattern and fmt.Stringer
for log messages:

  - HTTPServerService runs an *http.Server and shuts it down gracefully
    when the supervisor stops it.
  - TitleRefreshService loads the AniDB title dump on start and reloads it
    periodically, and reports readiness once the first load succeeded.
*/
package services
