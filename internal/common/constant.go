package common

// Permission names carried in the "permissions" claim of capability tokens.
const (
	PermissionReadDocument = "read-document"
	PermissionWrite        = "write"
	PermissionDownload     = "download"
	PermissionCoverImage   = "cover-image"
	PermissionAssistant    = "ai-assistant"
)

// AuthorizationHeaderName is the header carrying the document engine API token.
const AuthorizationHeaderName = "Authorization"
