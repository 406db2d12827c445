// Package utils exposes the configuration and logging plumbing shared by the CLI.
//
// ConfigurationLoader layers embedded defaults, an optional config file, a
// dotenv file, and environment variables through Viper. LoggerFactory builds
// zap loggers that write diagnostics to standard error.
package utils
