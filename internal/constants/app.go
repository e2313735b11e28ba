package constants

const (
	AppMain                = "restaurant"
	AppApiService          = "api-service"
	AppNotificationService = "notification-service"
	AppTerminal            = "terminal"
)

const (
	ModuleCart    = "cart"
	ModuleOrder   = "order"
	ModuleProduct = "product"
	ModuleUser    = "user"
)

const (
	ChannelOrderStatusUpdated = "order.status.updated"
)

const (
	AudienceUser = "restaurant-user"
	Issuer       = "restaurant-api"
)
