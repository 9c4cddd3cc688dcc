package common

// Training table columns
const (
	ColumnInflation = "CPI_Inflation"
	ColumnEarnings  = "Avg_Earnings"
	ColumnGrowth    = "Retail_Growth"
	ColumnStatus    = "Econ_Status"
)

// Source and sink kinds
const (
	KindCSV    = "csv"
	KindMySQL  = "mysql"
	KindSQLite = "sqlite"
	KindHTTP   = "http"
	KindBolt   = "bolt"
	KindNone   = "none"
)

// Environment variable keys
const (
	EnvConfigFile        = "CONFIG_FILE"
	EnvSourceKind        = "SOURCE_KIND"
	EnvSourcePath        = "SOURCE_PATH"
	EnvSourceDSN         = "SOURCE_DSN"
	EnvSourceTable       = "SOURCE_TABLE"
	EnvSourceURL         = "SOURCE_URL"
	EnvSinkKind          = "SINK_KIND"
	EnvSinkDSN           = "SINK_DSN"
	EnvSinkTable         = "SINK_TABLE"
	EnvDataPath          = "DATA_PATH"
	EnvModelID           = "MODEL_ID"
	EnvPersistRetries    = "PERSIST_RETRIES"
	EnvPersistRetryDelay = "PERSIST_RETRY_DELAY"
	EnvHTTPTimeout       = "HTTP_TIMEOUT"
	EnvServerPort        = "SERVER_PORT"
	EnvMetricsPort       = "METRICS_PORT"
	EnvLogLevel          = "LOG_LEVEL"
)

// Configuration defaults
const (
	DefaultSourceKind        = KindCSV
	DefaultSourcePath        = "data/training.csv"
	DefaultSourceTable       = "vw_Pizza_Model_Data"
	DefaultSinkKind          = KindNone
	DefaultSinkTable         = "Model_Predictions"
	DefaultModelID           = "Supervised_ML_Model_1"
	DefaultPersistRetries    = 3
	DefaultPersistRetryDelay = "200ms"
	DefaultHTTPTimeout       = "10s"
	DefaultLogLevel          = "info"
)

// Guardrail bounds. These are fixed plausibility limits and never derived
// from the training data.
const (
	MinInflation = -10.0
	MaxInflation = 25.0
	MinGrowth    = -50.0
	MaxGrowth    = 50.0
	MaxEarnings  = 10000.0
)

// ExitSentinel ends the interactive loop.
const ExitSentinel = "exit"

// Validation constants
const (
	MinNeighbors      = 1
	MaxNeighbors      = 50
	MaxPersistRetries = 10
	MinPort           = 1024
	MaxPort           = 65535
)
