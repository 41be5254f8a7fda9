package consts

const (
	ServerName      = "draw-mcp"
	ServerVersion   = "0.2.0"
	ProtocolVersion = "2024-11-05"

	SessionHeader = "Mcp-Session-Id"
	MessagesPath  = "/mcp/v1/messages"
	ImagesPath    = "/images"
	HealthPath    = "/health"

	ToolResultVersion = "1.0"

	DoubaoDefaultEndpoint = "https://ark.cn-beijing.volces.com"
)

type Provider string

const (
	Hunyuan Provider = "hunyuan"
	OpenAI  Provider = "openai"
	Doubao  Provider = "doubao"
)

func (p Provider) String() string {
	return string(p)
}

// ProviderOrder is the fixed selection-policy order, not configuration order.
var ProviderOrder = []Provider{Hunyuan, OpenAI, Doubao}

type Transport string

const (
	TransportHTTP  Transport = "http"
	TransportStdio Transport = "stdio"
)

func (t Transport) String() string {
	return string(t)
}

type ErrCode string

const (
	ErrProviderMissing     ErrCode = "provider_missing"
	ErrProviderUnavailable ErrCode = "provider_unavailable"
	ErrInvalidStyle        ErrCode = "invalid_style"
	ErrInvalidResolution   ErrCode = "invalid_resolution"
	ErrInvalidParameters   ErrCode = "invalid_parameters"
	ErrProviderError       ErrCode = "provider_error"
	ErrGenerationFailed    ErrCode = "generation_failed"
	ErrMissingContent      ErrCode = "missing_content"
	ErrDecodeFailed        ErrCode = "decode_failed"
	ErrInternal            ErrCode = "internal_error"
	ErrUnknownTool         ErrCode = "unknown_tool"
	ErrImageNotFound       ErrCode = "image_not_found"
	ErrPayloadTooLarge     ErrCode = "payload_too_large"
	ErrRestartRequired     ErrCode = "restart_required"
	ErrInvalidConfig       ErrCode = "invalid_config"
)

func (e ErrCode) String() string {
	return string(e)
}

// JSON-RPC wire codes.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInternalError  = -32603
	RPCUnauthorized   = -32001
	RPCForbidden      = -32002
)

type SSEEvent string

const (
	EventConnected SSEEvent = "connected"
	EventMessage   SSEEvent = "message"
	EventPing      SSEEvent = "ping"
)

func (e SSEEvent) String() string {
	return string(e)
}
