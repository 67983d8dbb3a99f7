// Package api implements the HTTP REST API and WebSocket server for the
// scene service.
//
// This package provides:
//   - Generation endpoints (preview, run, cleanup, run history)
//   - Scene management endpoints (list, show, create, duplicate, rename, delete, reorder)
//   - WebSocket hub relaying engine events to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// Handlers call the scene Engine and Manager directly. Listings are served
// from the state cache; item lists and every mutation go to OBS. Engine
// events reach WebSocket clients through a HubObserver registered on the
// engine, using the same event names as the MQTT publisher.
//
// # Errors
//
// All errors share one JSON shape. Remote failures are returned as 502 with
// the obs-websocket request status code in remote_code; a name collision on
// the remote is a 409.
//
// # Graceful Degradation
//
// The server runs without MQTT, InfluxDB or the audit log. GET /health
// reports 503 while any registered component check fails.
package api
