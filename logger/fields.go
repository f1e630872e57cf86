package logger

// Field keys shared across fixturekit log events, so filters match the
// same key no matter which package emitted the line.
const (
	FieldComponent = "component"
	FieldApp       = "app"
	FieldModel     = "model"
	FieldFixture   = "fixture"
	FieldMigration = "migration"
	FieldTable     = "table"
	FieldRecords   = "records"
	FieldDialect   = "dialect"
	FieldDuration  = "duration"
	FieldError     = "error"
)

// Fields builds a field map from alternating key-value pairs. Keys
// that are not strings are skipped, as is a trailing odd value.
//
//	logger.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}
