package service

// Broadcaster pushes JSON events to connected clients. *ws.Hub satisfies it;
// tests pass NopBroadcaster.
type Broadcaster interface {
	BroadcastJSON(v interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastJSON(interface{}) {}

var NopBroadcaster Broadcaster = noopBroadcaster{}
