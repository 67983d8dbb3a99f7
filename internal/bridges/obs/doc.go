// Package obs provides the obs-websocket v5 control channel for the scene engine.
//
// The client speaks the JSON protocol over a single WebSocket: it completes
// the Hello/Identify handshake, correlates Request and RequestResponse
// messages by request ID, and delivers subscribed events to a callback.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────┐
//	│                     Client (client.go)                     │
//	│                                                            │
//	│  Call() ──▶ writeMu ──▶ conn.WriteJSON(op 6)               │
//	│    ▲                                                       │
//	│    │ pending[requestId]                                    │
//	│    │                                                       │
//	│  readLoop ◀── conn.ReadMessage()                           │
//	│    ├── op 7 RequestResponse ──▶ pending channel            │
//	│    └── op 5 Event ──▶ eventQueue ──▶ eventWorker ──▶ cb    │
//	│                                                            │
//	│  On read failure: fail pending calls, reconnect with       │
//	│  exponential backoff, redo the handshake.                  │
//	└──────────────────────────────────────────────────────────┘
//
// # Stack Order
//
// obs-websocket numbers scene items from the bottom of the stack. The scene
// engine expects index 0 at the top; wrap the client with TopFirst before
// handing it to the engine.
//
// # Authentication
//
// Password-protected servers are not supported. Connect fails with
// ErrAuthRequired when the server's Hello demands authentication.
//
// # Usage
//
//	client, err := obs.Connect(ctx, obs.Config{URL: "ws://127.0.0.1:4455"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	engine := scenes.NewEngine(obs.TopFirst(client), observers, log)
package obs
