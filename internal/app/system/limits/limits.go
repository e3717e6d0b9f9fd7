// internal/app/system/limits/limits.go
package limits

// Request body size limits. These help prevent memory exhaustion from
// oversized requests; every API payload here is a small JSON document.
const (
	// MaxJSONBodySize caps credential and item JSON bodies.
	MaxJSONBodySize = 64 << 10 // 64 KB
)
