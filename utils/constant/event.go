package constant

// constants for common messages or events
const (
	// Adapter related messages
	AdapterInitialize = "AdapterInitialize"
	AdapterStart      = "AdapterStart"
	AdapterStop       = "AdapterStop"
	AdapterError      = "AdapterError"

	// System related messages
	SystemStarted = "SystemStarted"
	SystemStopped = "SystemStopped"
	SystemError   = "System Error"

	// Broker related messages
	BrokerConnected       = "BrokerConnected"
	BrokerConnectFailed   = "BrokerConnectFailed"
	QueueDeclared         = "QueueDeclared"
	QueueDeclareFailed    = "QueueDeclareFailed"
	EventPublished        = "EventPublished"
	EventPublishedFailed  = "EventPublishedFailed"
	EventReceived         = "EventReceived"
	QueueSubscribed       = "QueueSubscribed"
	QueueSubscribeFailed  = "QueueSubscribeFailed"
	QueueUnsubscribed     = "QueueUnsubscribed"
	MessageAckFailed      = "MessageAckFailed"
	ConnectionClosed      = "ConnectionClosed"
	ConnectionClosing     = "ConnectionClosing"
	ConnectionCloseForced = "ConnectionCloseForced"

	// Request/reply related messages
	RequestSent       = "RequestSent"
	ReplyDelivered    = "ReplyDelivered"
	ReplyDiscarded    = "ReplyDiscarded"
	ReplyMalformed    = "ReplyMalformed"
	ReplyDuplicate    = "ReplyDuplicate"
	WaitTimedOut      = "WaitTimedOut"
	WaitCanceled      = "WaitCanceled"
	TaskSubmitted     = "TaskSubmitted"
	TaskProcessed     = "TaskProcessed"
	TaskSkipped       = "TaskSkipped"
	StateTransitioned = "StateTransitioned"

	// Handler related messages
	HandlerStarted = "HandlerStarted"
	HandlerSuccess = "HandlerSuccessful"
	HandlerFailed  = "HandlerFailed"
	HandlerPanic   = "HandlerPanic"

	// HTTP server related messages
	RequestReceived = "RequestReceived"
	ResponseWritten = "ResponseWritten"
	RateLimited     = "RateLimited"
	ServerStarted   = "ServerStarted"
	ServerStopping  = "ServerStopping"
	ServerStopped   = "ServerStopped"

	AdaptersMessage     = "Adapter Message"
	CoordinatorMessage  = "Coordinator Message"
	WorkerMessage       = "Worker Message"
	ControllerMessage   = "Controller Message"
	ServiceStartMessage = "Service Start Message"
)
