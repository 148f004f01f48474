package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the notification job ID
	FieldJobID = "job_id"

	// FieldUpload is the uploaded file name of the current ingestion run
	FieldUpload = "upload"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldUserID is the authenticated caller identity
	FieldUserID = "user_id"
)

// Standard metric fields, attached per entry for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
