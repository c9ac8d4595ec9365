package logging

// Field names shared by every component, so a run can be followed by
// filtering on a single key.
const (
	// Run lifecycle.
	FieldRunID     = "run_id"
	FieldState     = "state"
	FieldPrevState = "from"
	FieldDuration  = "duration_ms"
	FieldComponent = "component"

	// Inputs and outputs.
	FieldSource     = "source"
	FieldSources    = "sources"
	FieldSkipped    = "skipped_sources"
	FieldFile       = "file_path"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
	FieldEncoding   = "encoding"
	FieldDelimiter  = "delimiter"

	// Rows and records.
	FieldLine        = "line"
	FieldReason      = "reason"
	FieldRows        = "rows"
	FieldAccepted    = "accepted"
	FieldRejected    = "rejected"
	FieldCount       = "count"
	FieldDate        = "date"
	FieldDateRange   = "date_range"
	FieldAmount      = "amount"
	FieldDescription = "description"

	// Categorization.
	FieldCategory = "category"
	FieldKeyword  = "keyword"
)
