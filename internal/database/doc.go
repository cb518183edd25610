// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package database opens DuckDB handles and runs transactions on them.

The title repository and the anime mapping repository keep their rows in
DuckDB, either in memory (the AniDB titles dump is reloaded on every start)
or in a database file (anime mappings configured as duckdb:/path).

Connections:
  - Open("") or Open(":memory:") opens a private in-memory database
  - Open("/var/lib/amc2/mapping.duckdb") opens (and creates) a file
  - extension auto-install and auto-load are disabled so that startup never
    reaches out to the network

Transactions:
InTx runs a function inside a transaction, rolls back on error and retries
DuckDB transaction conflicts with exponential backoff.
*/
package database
