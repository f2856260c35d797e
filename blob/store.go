// Package blob provides the binary object sink for uploaded exchange files.
package blob

import "context"

// Store persists raw uploaded payloads. Keys may contain forward-slash
// separated path segments; each bucket is an independent namespace.
type Store interface {
	Write(ctx context.Context, bucket string, key string, data []byte) error
}
