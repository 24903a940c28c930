package config

const SourceFileExt = ".vd"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".vd", ".veldt"}

// ManifestFileExtensions are recognized YAML manifest extensions
var ManifestFileExtensions = []string{".yaml", ".yml"}

// Daemon defaults
const (
	DefaultDaemonAddr = "127.0.0.1:7421"
	DaemonAddrEnv     = "VELDT_DAEMON_ADDR"
)

// Trace store defaults
const (
	DefaultTraceDB     = "veldt-trace.db"
	TraceDBEnv         = "VELDT_TRACE_DB"
	StoreSchemaVersion = 1
)

// NoColorEnv disables ANSI output when set (https://no-color.org).
const NoColorEnv = "NO_COLOR"
