package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Signaling       Category = "Signaling"
	Transport       Category = "Transport"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup      SubCategory = "Startup"
	Shutdown     SubCategory = "Shutdown"
	RateLimiting SubCategory = "RateLimiting"

	// Signaling
	Membership SubCategory = "Membership"
	Routing    SubCategory = "Routing"
	Chat       SubCategory = "Chat"

	// Transport
	Upgrade SubCategory = "Upgrade"
	Pump    SubCategory = "Pump"

	ExternalService SubCategory = "ExternalService"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	ConnectionID ExtraKey = "ConnectionID"
	RoomKey      ExtraKey = "RoomKey"
	TargetID     ExtraKey = "TargetID"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
