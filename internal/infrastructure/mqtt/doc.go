// Package mqtt provides MQTT connectivity for the scene service.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing scene events with QoS guarantees
//   - The generation command subscription
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	broadcast/events/scene_created        one per created scene
//	broadcast/events/generation_complete  run report
//	broadcast/events/scenes_deleted       cleanup report
//	broadcast/system/status               retained online/offline, LWT
//	broadcast/command/generation          {"action":"generate"|"cleanup"}
//
// MQTT is optional: the daemon runs without it when mqtt.enabled is false.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.GenerationComplete(), report)
package mqtt
