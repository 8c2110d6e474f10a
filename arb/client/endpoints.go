package client

// Service endpoints consumed by this client.
const (
	EndpointLogin      = "/v1/auth/login"
	EndpointInitAdmin  = "/v1/auth/init"
	EndpointOrders     = "/v1/orders"
	EndpointCancel     = "/v1/orders/cancel"
	EndpointOpenOrders = "/v1/orders/open"
	EndpointConfig     = "/v1/config"
)
