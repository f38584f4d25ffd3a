package log

// Field names shared by every log line.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserID      = "user_id"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldError       = "error"
	FieldOperation   = "operation"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentServices  = "services"
	ComponentStorage   = "storage"
	ComponentStats     = "stats"
	ComponentAuth      = "auth"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)
