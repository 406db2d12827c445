// Package cli constructs the prdispatch command-line interface. It turns the
// dispatch command into the Cobra root, loads configuration from the embedded
// defaults, an optional config file, a dotenv file, and the environment, and
// builds the zap logger handed to the command.
package cli
