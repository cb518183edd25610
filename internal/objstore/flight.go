// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/amc2/internal/upstream"
)

// FlightTimeout bounds a shared flight. Cache stores serialize backend
// calls, so a flight may queue behind one upstream request before its own.
const FlightTimeout = 2 * upstream.DefaultTimeout

// Share runs fn once for all concurrent callers with the same key.
//
// fn runs on a context detached from the cancellation of whichever caller
// started the flight, bounded by FlightTimeout, so one client going away does
// not fail the others. Each caller still stops waiting when its own context
// ends. A nil result is returned as the zero T.
func Share[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	ch := g.DoChan(key, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FlightTimeout)
		defer cancel()
		return fn(flightCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

