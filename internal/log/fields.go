package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "op"
	FieldUsername    = "username"
	FieldEntryKind   = "kind"
	FieldEntryID     = "id"
	FieldIncomeID    = "income_id"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldSheetsRef   = "ref"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
