package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime (T001-T099)
	// ============================================

	"T001": {
		Category: CategoryRuntime,
		Message:  "Renderer not attached",
		Detail:   "A notification was requested before a renderer was attached to the registry. The notification was dropped.",
	},
	"T002": {
		Category: CategoryRuntime,
		Message:  "Unknown notification key",
		Detail:   "No live notification has this key. It may already have been closed.",
	},
	"T003": {
		Category: CategoryRuntime,
		Message:  "Option out of range",
		Detail:   "A notification option was outside its valid range and was replaced by the default.",
	},
	"T004": {
		Category: CategoryRuntime,
		Message:  "Notification rate limit exceeded",
		Detail:   "Too many notifications were shown in a short period. The notification was dropped.",
	},
	"T005": {
		Category: CategoryRuntime,
		Message:  "Renderer call failed",
		Detail:   "The renderer returned an error or panicked while drawing a notification.",
	},

	// ============================================
	// Config (C001-C099)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Cannot read config file",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Cannot parse config file",
		Detail:   "Config files must be JSON (.json) or YAML (.yaml, .yml).",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Request (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryRequest,
		Message:  "Malformed request body",
	},
	"R002": {
		Category: CategoryRequest,
		Message:  "Invalid notification type",
		Detail:   "Type must be one of success, warning, error or info.",
	},
	"R003": {
		Category: CategoryRequest,
		Message:  "Notification not found",
	},
	"R004": {
		Category: CategoryRequest,
		Message:  "Notification was not shown",
		Detail:   "The renderer is not attached, the rate limit was exceeded or the renderer failed.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
