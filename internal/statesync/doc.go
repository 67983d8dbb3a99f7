// Package statesync keeps a cached copy of the remote scene listing.
//
// The cache is filled by a full GetSceneList fetch and refreshed when
// obs-websocket reports a scene change, when the control connection
// reconnects, and on a fixed interval as a safety net. Scene events only
// schedule a refresh; the listing itself always comes from the remote.
//
// Readers call State, which returns a copy or nil before the first
// successful fetch. A *Syncer satisfies scenes.StateCache.
//
// Usage:
//
//	syncer := statesync.New(client, statesync.Config{RefreshInterval: time.Minute})
//	syncer.Attach(conn)
//	if err := syncer.Start(ctx); err != nil { ... }
//	defer syncer.Stop()
//	mgr := scenes.NewManager(client, syncer, logger)
package statesync
