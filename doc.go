// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the committee-roster server.

committee-roster decides whether a voter may sit on a party committee for the
active term, admits and removes members, spreads each committee's LTED weight
across its occupied seats and rescans seated members against fresh BOE voter
records.

# Starting the Server

	DATABASE_URL=roster.db ADMIN_KEY_SALT=... go run . serve

Or against PostgreSQL with flags:

	go run . serve -p 3318 --database-type postgres -d "postgres://..." --admin-salt ...

A .env file in the working directory is loaded first.

# Commands

  - serve: HTTP API with graceful shutdown
  - migrate: create the schema
  - flags run: BOE eligibility scan
  - weights import <file>: LTED weight table from .csv or .xlsx
  - term create <name>, term activate <id>

# Architecture

  - cli: cobra commands and logger setup
  - router: route definitions using Go 1.22+ routing
  - handlers: HTTP request handlers
  - eligibility, roster, weights, flagging, terms: domain services
  - store: sqlx queries and transactions
  - middleware: CORS, logging, metrics, JSON and error helpers
  - models: request/response types, enums and error kinds
  - auth: operator admin keys
  - db: connections and schema
  - metrics: Prometheus collectors
  - cliparse: layered configuration

See package documentation for each component.
*/
package main
