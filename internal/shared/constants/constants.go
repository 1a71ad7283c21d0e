package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"

	// Content Types
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	// Gin context keys
	ContextKeyUserID           = "user_id"
	ContextKeyRequestID        = "request_id"
	ContextKeyPermissionHandle = "forum_permission_handler"

	// Session claim carrying the LTI context bound at launch time
	SessionLTIContextID = "lti_context_id"

	// Database table names
	TableConsumers     = "lti_consumers"
	TablePassports     = "lti_passports"
	TableUsers         = "users"
	TableLTIContexts   = "lti_contexts"
	TableForums        = "forums"
	TableForumContexts = "forum_lti_contexts"
	TableTopics        = "forum_topics"
	TablePosts         = "forum_posts"
)
