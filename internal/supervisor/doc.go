// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package supervisor provides process supervision for the server using suture v4.

The supervisor tree organizes the long-running services into two layers:

	RootSupervisor ("amc2")
	├── DataSupervisor ("data-layer")
	│   └── TitleRefreshService (unless TITLE_REFRESH_INTERVAL is 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure counter: each failure
increments it, the counter decays over FailureDecay seconds, and above
FailureThreshold restarts wait FailureBackoff. Supervisor events are logged
through sutureslog into the zerolog-backed slog logger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewTitleRefreshService(titles, time.Hour))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning an error restarts the service; returning after context
cancellation is a shutdown.
*/
package supervisor
