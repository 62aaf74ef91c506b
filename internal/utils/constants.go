package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

const (
	// ConfigFileName is the name of the configuration file looked up in the working directory.
	ConfigFileName = ".sitemapper.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".sitemapper"
	// GlobalConfigFileName is the name of the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// IgnoreFileName lists exclusion patterns at the top of a scanned root.
	IgnoreFileName = ".sitemapperignore"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "sitemapper failed"
)
