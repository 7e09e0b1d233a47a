// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

Wrap handlers with request logging and per-endpoint metrics:

	mux.HandleFunc("GET /eligibility",
		middleware.WithMetrics(m, "eligibility", middleware.WithLogging(h.Check)))

WithLogging logs request start (method, path, client IP) and completion
(duration_ms). WithMetrics records the count and latency of each request
labelled by endpoint, method and status code.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST, PATCH, DELETE and OPTIONS with the Content-Type, X-Actor
and X-Admin-Key headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ParseStrictJSONBody rejects unknown fields. ParseOptionalJSONBody accepts an
empty body, chunked or not.

# Errors

WriteError maps the error kinds in models to status codes:

	ErrNotFound, ErrNoActiveTerm                   → 404
	ErrValidation                                  → 400
	ErrDataIntegrity, ErrInvalidTransition, ErrConflict → 409

Anything else is logged and answered with a bare 500.
*/
package middleware
