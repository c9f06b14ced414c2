package logging

// Field names shared by all log entries so logs can be filtered consistently.
const (
	FieldFile        = "file_path"
	FieldBank        = "bank_id"
	FieldOverride    = "bank_override"
	FieldStrategy    = "strategy"
	FieldLine        = "line"
	FieldRaw         = "raw"
	FieldReason      = "reason"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldCount       = "count"
	FieldDropped     = "dropped"
	FieldMissing     = "missing_fields"
	FieldDuration    = "duration_ms"
	FieldProcessID   = "process_id"
	FieldFormat      = "format"
	FieldBackend     = "backend"
	FieldVersion     = "registry_version"
	FieldOutputFile  = "output_file"
	FieldWorkers     = "workers"
	FieldRemote      = "remote_addr"
	FieldStatus      = "status"
)
