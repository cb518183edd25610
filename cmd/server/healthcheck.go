// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const healthcheckTimeout = 3 * time.Second

// healthcheckURL is the liveness endpoint of the server on this host.
func healthcheckURL() string {
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = os.Getenv("SERVER_PORT")
	}
	if port == "" {
		port = "8000"
	}
	return "http://" + net.JoinHostPort("127.0.0.1", port) + "/healthz"
}

// runHealthcheck probes the local server for the container HEALTHCHECK and
// returns the process exit code.
func runHealthcheck(url string) int {
	ctx, cancel := context.WithTimeout(context.Background(), healthcheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "unhealthy: %s\n", resp.Status)
		return 1
	}
	return 0
}
