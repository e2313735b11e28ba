package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyDbURL         = "dbUrl"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyPathValues    = "pathValues"
	KeyStatusCode    = "statusCode"
	KeyUserID        = "userId"
	KeyTargetUserID  = "targetUserId"
	KeyIsAdmin       = "isAdmin"
	KeyCart          = "cart"
	KeyCartItemID    = "cartItemId"
	KeyCacheKey      = "cacheKey"
	KeyProductID     = "productId"
	KeyProducts      = "products"
	KeyQuantity      = "quantity"
	KeyOrderID       = "orderId"
	KeyOrders        = "orders"
	KeyOrderType     = "orderType"
	KeyOrderStatus   = "orderStatus"
	KeyChannel       = "channel"
	KeyEvent         = "event"
	KeyCustomers     = "customers"
	KeyBaseURL       = "baseUrl"
	KeyMethod        = "method"
	KeyPath          = "path"
	KeySeverity      = "severity"
)
