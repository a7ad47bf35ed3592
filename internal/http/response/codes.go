package response

// 业务状态码，HTTP 状态始终为 200
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
