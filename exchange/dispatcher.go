package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"exgate/blob"
	"exgate/config"
)

// Type classifies the data stream being exchanged.
type Type string

const (
	TypeCatalog Type = "catalog"
	TypeReport  Type = "report"
)

// bucket maps the exchange type onto its storage namespace.
func (t Type) bucket() string {
	return string(t)
}

// Mode is the protocol step requested by the exchange partner.
type Mode string

const (
	ModeCheckAuth Mode = "checkauth"
	ModeInit      Mode = "init"
	ModeFile      Mode = "file"
	ModeImport    Mode = "import"
)

// Request carries one inbound exchange call, already unpacked from the
// transport by the request adapter.
type Request struct {
	Type        string
	Mode        string
	Filename    string
	Body        []byte
	SessionID   string
	CSRFToken   string
	Credentials Credentials
}

// Handler is the contract between the transport adapter and the exchange
// engine. Handle never fails outward: every recoverable error is folded
// into the returned result.
type Handler interface {
	Name() string
	Handle(ctx context.Context, req Request) Result
}

// Dispatcher is the top-level protocol state machine. It holds no request
// state of its own; every call is independently classified by (type, mode).
type Dispatcher struct {
	settings  *config.Settings
	gate      *Gate
	validator *Validator
	router    *Router
	audit     *auditLogger
}

var _ Handler = (*Dispatcher)(nil)

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger for exchange events. If not set, a
// default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.audit = newAuditLogger(logger)
	}
}

// NewDispatcher wires the exchange engine over its collaborators.
func NewDispatcher(settings *config.Settings, sessions *SessionStore, blobs blob.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{settings: settings}
	for _, opt := range opts {
		opt(d)
	}
	if d.audit == nil {
		d.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	d.gate = newGate(settings, sessions, d.audit)
	d.validator = newValidator(settings, sessions)
	d.router = newRouter(blobs, d.audit)
	return d
}

func (d *Dispatcher) Name() string { return "exchange" }

// Handle classifies the request and routes it through the four protocol
// steps. checkauth is the only mode reachable without an existing session.
func (d *Dispatcher) Handle(ctx context.Context, req Request) Result {
	typ := Type(req.Type)
	if typ != TypeCatalog && typ != TypeReport {
		return Failure(fmt.Sprintf("Parameter type %q is not supported. Supported parameters: catalog, report", req.Type))
	}

	mode := Mode(req.Mode)
	if mode == ModeCheckAuth {
		res, err := d.gate.CheckAuth(ctx, req.Credentials)
		if err != nil {
			return d.fault(err)
		}
		return res
	}

	if err := d.validator.Validate(ctx, req.SessionID, req.CSRFToken); err != nil {
		if protocolError(err) {
			d.audit.event(EventSessionRejected, slog.String("reason", err.Error()))
			return Failure(err.Error())
		}
		return d.fault(err)
	}

	switch mode {
	case ModeInit:
		return Raw(
			"zip="+yesNo(d.settings.UseZip),
			fmt.Sprintf("file_limit=%d", d.settings.FileSizeLimit),
		)
	case ModeFile:
		res, err := d.router.Route(ctx, typ, req.Filename, req.Body)
		if err != nil {
			return d.fault(err)
		}
		return res
	case ModeImport:
		// Acknowledgment stub: the filename is checked, the content is not
		// parsed. TODO: replace with the real catalog import once its
		// semantics are agreed with the partner system.
		if req.Filename == "" {
			return Failure(ErrEmptyFilename.Error())
		}
		d.audit.event(EventImportAck, slog.String("filename", req.Filename))
		return Success()
	}

	return Failure(fmt.Sprintf("Type '%s' and mode '%s' are not supported.", req.Type, req.Mode))
}

// fault logs a storage-level error and converts it into the generic
// failure the protocol allows to surface.
func (d *Dispatcher) fault(err error) Result {
	d.audit.fault(EventStorageFault, err)
	return Failure("Internal server error.")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
