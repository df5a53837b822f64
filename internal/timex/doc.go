// Package timex holds time helpers shared by the client: a JSON-friendly
// Duration for config files, normalization of the heterogeneous timestamp
// forms the backend emits, and calendar-date comparisons.
//
// All timestamps are normalized once, at the ingestion boundary, with
// ParseInstant. Code past that boundary only ever sees time.Time values,
// where the zero value means "missing or malformed".
package timex
