package events

const (
	TopicRouterUpdate = "ndiscd:events:router:update"
	TopicRouterError  = "ndiscd:events:router:error"
)
