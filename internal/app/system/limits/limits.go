// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the maximum size of a JSON request body. A job
	// description with a long purpose still fits comfortably.
	MaxJSONBody = 1 << 20 // 1 MB
)
