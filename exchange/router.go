package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"exgate/blob"
)

const importFilesDir = "import_files"

// timestampLayout yields lexically sortable, collision-resistant prefixes
// for generated file names.
const timestampLayout = "2006-01-02_15-04-05.000-0700"

// Router decides the blob destination for an uploaded exchange file and
// delegates the write.
type Router struct {
	blobs blob.Store
	audit *auditLogger
}

// newRouter creates a storage router over the given blob store.
func newRouter(blobs blob.Store, audit *auditLogger) *Router {
	return &Router{blobs: blobs, audit: audit}
}

// Route stores body under the namespace of the exchange type, with the key
// chosen by the filename-shape policy. A non-nil error reports a storage
// fault; validation problems come back as failure results.
func (r *Router) Route(ctx context.Context, typ Type, filename string, body []byte) (Result, error) {
	if filename == "" {
		return Failure(ErrEmptyFilename.Error()), nil
	}
	if body == nil {
		return Failure(ErrNoBody.Error()), nil
	}

	key := destinationKey(typ, filename, time.Now())
	ctx, cancel := context.WithTimeout(ctx, ioTimeout)
	defer cancel()
	if err := r.blobs.Write(ctx, typ.bucket(), key, body); err != nil {
		return Result{}, fmt.Errorf("storing %s: %w", filename, err)
	}
	r.audit.event(EventFileStored,
		slog.String("type", string(typ)),
		slog.String("key", key),
		slog.Int("size", len(body)))
	return Success(), nil
}

// destinationKey applies the filename-shape policy. Files under
// import_files/ keep their directory and base name with no prefix. Other
// catalog files land at the namespace root behind a generation timestamp;
// other report files land at the namespace root unprefixed.
func destinationKey(typ Type, filename string, now time.Time) string {
	clean := path.Clean(strings.ReplaceAll(filename, "\\", "/"))
	first, _, _ := strings.Cut(clean, "/")
	if first == importFilesDir {
		return clean
	}
	base := path.Base(clean)
	if typ == TypeReport {
		return base
	}
	return now.Format(timestampLayout) + "_" + base
}
