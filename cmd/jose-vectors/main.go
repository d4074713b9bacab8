// Package main is the entry point for the jose-vectors application.
// It registers the generate, list, verify and keygen commands and executes
// the command-line interface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	commands "github.com/r-lib/jose/cmd/jose-vectors/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "jose-vectors",
		Short: "WebCrypto test vector generator",
		Long: `jose-vectors generates JOSE/WebCrypto test vectors: keys exported as JWK
together with ciphertexts, signatures and derived bits, ready to be pasted
into the test suite of another JOSE implementation.

Vectors written with --format json can be checked again with "verify".

Settings may also be provided through environment variables:
- JOSE_VECTORS_PLAINTEXT
- JOSE_VECTORS_FORMAT
- JOSE_VECTORS_OUTPUT
- JOSE_VECTORS_WORKERS
- JOSE_VECTORS_LOG_LEVEL
- JOSE_VECTORS_LOG_TYPE
- JOSE_VECTORS_LOG_FILE`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	commands.InitPersistentFlags(rootCmd)

	if err := commands.InitVectorCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize vector commands: %w", err)
	}

	if err := commands.InitKeyCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize key commands: %w", err)
	}

	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
