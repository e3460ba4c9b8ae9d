package log

import "sort"

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"

	FieldCollection  = "collection"
	FieldRecordID    = "record_id"
	FieldInvoiceNo   = "invoice_no"
	FieldStatus      = "status"
	FieldDestination = "destination"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldRange       = "range"
	FieldRows        = "rows"
	FieldSheet       = "sheet"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentManifest  = "manifest"
	ComponentLedger    = "ledger"
	ComponentSettings  = "settings"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentImporter  = "importer"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
)

// Operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpImport   = "import"
	OpExport   = "export"
	OpPublish  = "publish"
	OpMirror   = "mirror"
	OpSync     = "sync"
	OpValidate = "validate"
	OpRender   = "render"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Error type categories.
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields builds structured attributes fluently.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError records err and its category. A nil err is ignored.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		if errorType != "" {
			f[FieldErrorType] = errorType
		}
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord identifies the record a log line is about.
func (f LogFields) WithRecord(collection, id string) LogFields {
	f[FieldCollection] = collection
	f[FieldRecordID] = id
	return f
}

func (f LogFields) WithInvoice(invoiceNo, status, destination string, total int64) LogFields {
	f[FieldInvoiceNo] = invoiceNo
	f[FieldStatus] = status
	f[FieldDestination] = destination
	f[FieldAmount] = total
	return f
}

func (f LogFields) WithExpense(category string, amount int64) LogFields {
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key/value pairs, sorted by key so
// output is stable.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
