package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSuitePath is the default path scanned for suite files
	DefaultSuitePath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors runs descriptors one at a time
	DefaultProcessors = 1
	// DefaultDatabasePrefix prefixes every per-context database
	DefaultDatabasePrefix = "vmx"
	// DefaultLogLevel is the default logrus level
	DefaultLogLevel = "info"
	// ConfigFileName is the name of the optional project config file, without extension
	ConfigFileName = "vmx"
	// EnvPrefix prefixes environment variables read by viper
	EnvPrefix = "VMX"
)

// DefaultSupportedVariants is the catalog used when none is configured
var DefaultSupportedVariants = []int{16, 17, 18, 19, 21, 22, 23}

// DefaultPathsToIgnore are the default directories to ignore when scanning for suites
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
