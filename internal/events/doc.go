// Package events connects the scene engine to the MQTT bus.
//
// MQTTPublisher is a scenes.Observer that publishes engine notifications:
//
//	broadcast/events/scene_created        one per created scene
//	broadcast/events/generation_complete  the run report
//	broadcast/events/scenes_deleted       the cleanup report
//
// CommandListener subscribes to broadcast/command/generation and starts
// generation or cleanup runs on request:
//
//	{"action": "generate", "types": ["single", "dual"]}
//	{"action": "cleanup"}
package events
