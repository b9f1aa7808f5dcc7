// Package metrics provides custom Prometheus metrics for vocab-manager.
package metrics

// Operation names recorded by the API client and the reference API.
const (
	OpListLanguages  = "list_languages"
	OpCreateLanguage = "create_language"
	OpUpdateLanguage = "update_language"
	OpDeleteLanguage = "delete_language"
	OpListEntries    = "list_entries"
	OpCreateEntry    = "create_entry"
	OpUpdateEntry    = "update_entry"
	OpDeleteEntry    = "delete_entry"
	OpHealth         = "health"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Histogram bucket parameters.
const (
	BucketStart1ms  = 0.001
	BucketFactor2   = 2
	BucketCount14   = 14 // 1ms to ~8s
	BucketStart100B = 100
	BucketFactor10  = 10
	BucketCount6    = 6 // 100B to ~10MB
)
