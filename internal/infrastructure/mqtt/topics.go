package mqtt

// TopicPrefix is the root of every topic this service publishes or
// subscribes to.
const TopicPrefix = "broadcast"

// Topics provides builders for the service's MQTT topics.
// Using these helpers keeps topic naming consistent between the publisher,
// the command subscriber and external consumers.
//
//	topic := mqtt.Topics{}.SceneCreated()
//	// Returns: "broadcast/events/scene_created"
type Topics struct{}

// SceneCreated is published once per scene a generation run creates.
func (Topics) SceneCreated() string {
	return TopicPrefix + "/events/scene_created"
}

// GenerationComplete is published with the report of each generation run.
func (Topics) GenerationComplete() string {
	return TopicPrefix + "/events/generation_complete"
}

// ScenesDeleted is published with the report of each cleanup.
func (Topics) ScenesDeleted() string {
	return TopicPrefix + "/events/scenes_deleted"
}

// SystemStatus carries the retained online/offline status and the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// GenerationCommand accepts {"action":"generate"} and {"action":"cleanup"}.
func (Topics) GenerationCommand() string {
	return TopicPrefix + "/command/generation"
}
