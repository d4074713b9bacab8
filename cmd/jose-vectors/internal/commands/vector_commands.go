package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/r-lib/jose/internal/app"
	"github.com/r-lib/jose/internal/infrastructure/sink"
	"github.com/r-lib/jose/internal/pkg/config"
	"github.com/r-lib/jose/internal/pkg/textenc"

	"github.com/spf13/cobra"
)

// VectorCommandHandler encapsulates logic for generating, listing and
// verifying vectors via CLI.
type VectorCommandHandler struct{}

// NewVectorCommandHandler returns a VectorCommandHandler. Logger and
// SubtleCrypto are created per invocation, once flags are parsed.
func NewVectorCommandHandler() (*VectorCommandHandler, error) {
	return &VectorCommandHandler{}, nil
}

// GenerateCmd runs the named trials, or the whole catalog, and writes the
// vectors to the configured sink.
func (commandHandler *VectorCommandHandler) GenerateCmd(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("invalid all flag: %w", err)
	}
	if all && len(args) > 0 {
		return errors.New("--all cannot be combined with trial names")
	}

	settings, loggerInstance, subtle, err := setupSubtleCrypto(cmd)
	if err != nil {
		return err
	}

	generator := &settings.Generator
	if err := applyGeneratorFlags(cmd, generator); err != nil {
		return err
	}
	if err := generator.Validate(); err != nil {
		return err
	}

	vectorSink, err := sink.Open(generator, cmd.OutOrStdout(), loggerInstance)
	if err != nil {
		return err
	}

	service, err := app.NewGenerationService(subtle, vectorSink, generator.Workers, loggerInstance)
	if err != nil {
		_ = vectorSink.Close()
		return fmt.Errorf("failed to create generation service: %w", err)
	}

	plaintext := textenc.ByteString(generator.Plaintext)
	genErr := service.Generate(cmd.Context(), args, plaintext)
	if err := vectorSink.Close(); err != nil {
		genErr = errors.Join(genErr, fmt.Errorf("failed to close output: %w", err))
	}
	if genErr != nil {
		return genErr
	}

	if generator.OutputPath != "" {
		loggerInstance.Info("Vectors saved to ", generator.OutputPath)
	}
	return nil
}

func applyGeneratorFlags(cmd *cobra.Command, generator *config.GeneratorSettings) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("plaintext") {
		if generator.Plaintext, err = flags.GetString("plaintext"); err != nil {
			return fmt.Errorf("invalid plaintext flag: %w", err)
		}
	}
	if flags.Changed("format") {
		if generator.Format, err = flags.GetString("format"); err != nil {
			return fmt.Errorf("invalid format flag: %w", err)
		}
	}
	if flags.Changed("output") {
		if generator.OutputPath, err = flags.GetString("output"); err != nil {
			return fmt.Errorf("invalid output flag: %w", err)
		}
	}
	if flags.Changed("workers") {
		if generator.Workers, err = flags.GetInt("workers"); err != nil {
			return fmt.Errorf("invalid workers flag: %w", err)
		}
	}
	return nil
}

// ListCmd prints the trial catalog.
func (commandHandler *VectorCommandHandler) ListCmd(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, trial := range app.Trials() {
		fmt.Fprintf(w, "%s\t%s\n", trial.Name, trial.Description)
	}
	return w.Flush()
}

// VerifyCmd checks every vector of a JSON Lines file and fails if any of
// them does not reproduce.
func (commandHandler *VectorCommandHandler) VerifyCmd(cmd *cobra.Command, _ []string) error {
	inputPath, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("invalid input flag: %w", err)
	}

	_, loggerInstance, subtle, err := setupSubtleCrypto(cmd)
	if err != nil {
		return err
	}

	service, err := app.NewVerificationService(subtle, loggerInstance)
	if err != nil {
		return fmt.Errorf("failed to create verification service: %w", err)
	}

	source, closer, err := sink.OpenSource(inputPath)
	if err != nil {
		return err
	}
	defer closer.Close()

	out := cmd.OutOrStdout()
	total, failed := 0, 0
	for {
		vector, err := source.Next(cmd.Context())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		total++
		if err := service.Verify(cmd.Context(), vector); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s %s: %v\n", vector.Trial, vector.ID, err)
			continue
		}
		fmt.Fprintf(out, "OK %s %s\n", vector.Trial, vector.ID)
	}

	loggerInstance.Info(fmt.Sprintf("Verified %d vectors, %d failed", total, failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d vectors failed verification", failed, total)
	}
	return nil
}

// InitVectorCommands registers the generate, list and verify commands.
func InitVectorCommands(rootCmd *cobra.Command) error {
	handler, err := NewVectorCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create vector command handler %w", err)
	}

	var generateCmd = &cobra.Command{
		Use:   "generate [trial...]",
		Short: "Run trials and print their vectors",
		RunE:  handler.GenerateCmd,
	}
	generateCmd.Flags().StringP("plaintext", "", config.DefaultPlaintext, "Message every trial transforms")
	generateCmd.Flags().StringP("format", "", config.FormatText, "Output format (text or json)")
	generateCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	generateCmd.Flags().IntP("workers", "", 4, "Number of trials run concurrently")
	generateCmd.Flags().BoolP("all", "", false, "Run every trial (default when no trial is named)")
	rootCmd.AddCommand(generateCmd)

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List available trials",
		Args:  cobra.NoArgs,
		RunE:  handler.ListCmd,
	}
	rootCmd.AddCommand(listCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify vectors from a JSON Lines file",
		Args:  cobra.NoArgs,
		RunE:  handler.VerifyCmd,
	}
	verifyCmd.Flags().StringP("input", "i", "", "JSON Lines file written by generate --format json")
	if err := verifyCmd.MarkFlagRequired("input"); err != nil {
		return fmt.Errorf("failed to mark input flag required: %w", err)
	}
	rootCmd.AddCommand(verifyCmd)

	return nil
}
