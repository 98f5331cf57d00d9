package logger

// Field keys shared by every component, so log queries can rely on them.
const (
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRequestID = "request_id"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldErrorCode = "error_code"
	FieldDuration  = "duration_ms"
	FieldStage     = "stage"
	FieldFile      = "file"
	FieldProvider  = "provider"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("saved", logger.Fields(logger.FieldFile, name, "bytes", n))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	m := map[string]interface{}{FieldOperation: op}
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}
