package obs

import "encoding/json"

// WebSocket opcodes used by this client.
const (
	OpHello           = 0
	OpIdentify        = 1
	OpIdentified      = 2
	OpEvent           = 5
	OpRequest         = 6
	OpRequestResponse = 7
)

// rpcVersion is the obs-websocket RPC version this client negotiates.
const rpcVersion = 1

// subprotocol selects JSON message encoding.
const subprotocol = "obswebsocket.json"

// Event subscription categories.
const (
	EventGeneral uint32 = 1 << 0
	EventConfig  uint32 = 1 << 1
	EventScenes  uint32 = 1 << 2
	EventInputs  uint32 = 1 << 3

	// DefaultEventSubscriptions covers what scene state sync needs.
	DefaultEventSubscriptions = EventGeneral | EventScenes
)

// Request status codes.
const (
	StatusSuccess               = 100
	StatusResourceNotFound      = 600
	StatusResourceAlreadyExists = 601
)

// envelope is the outer frame of every message.
type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type outgoing struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type helloData struct {
	ObsWebSocketVersion string          `json:"obsWebSocketVersion"`
	RPCVersion          int             `json:"rpcVersion"`
	Authentication      json.RawMessage `json:"authentication,omitempty"`
}

type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	EventSubscriptions uint32 `json:"eventSubscriptions"`
}

type identifiedData struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type requestData struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

type requestResponse struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

// Event is one server-pushed event.
type Event struct {
	Type   string          `json:"eventType"`
	Intent uint32          `json:"eventIntent"`
	Data   json.RawMessage `json:"eventData,omitempty"`
}
