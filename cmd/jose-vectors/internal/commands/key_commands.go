package commands

import (
	"fmt"

	"github.com/r-lib/jose/internal/app"
	"github.com/r-lib/jose/internal/domain/vectors"
	"github.com/r-lib/jose/internal/domain/webcrypto"

	"github.com/spf13/cobra"
)

// KeyCommandHandler encapsulates logic for generating standalone keys via CLI.
type KeyCommandHandler struct{}

// NewKeyCommandHandler returns a KeyCommandHandler.
func NewKeyCommandHandler() (*KeyCommandHandler, error) {
	return &KeyCommandHandler{}, nil
}

// KeygenCmd generates a key or key pair and prints each key as a JWK line.
func (commandHandler *KeyCommandHandler) KeygenCmd(cmd *cobra.Command, _ []string) error {
	request, err := keyRequestFromFlags(cmd)
	if err != nil {
		return err
	}

	_, loggerInstance, subtle, err := setupSubtleCrypto(cmd)
	if err != nil {
		return err
	}

	service, err := app.NewKeyService(subtle, loggerInstance)
	if err != nil {
		return fmt.Errorf("failed to create key service: %w", err)
	}

	keys, err := service.Generate(cmd.Context(), request)
	if err != nil {
		return err
	}

	for _, key := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), key.JWK.String())
	}
	return nil
}

func keyRequestFromFlags(cmd *cobra.Command) (*vectors.KeyRequest, error) {
	flags := cmd.Flags()

	name, err := flags.GetString("algorithm")
	if err != nil {
		return nil, fmt.Errorf("invalid algorithm flag: %w", err)
	}
	algorithm, err := webcrypto.NormalizeAlgorithm(name)
	if err != nil {
		return nil, err
	}

	request := &vectors.KeyRequest{Algorithm: algorithm, Extractable: true}

	if request.Length, err = flags.GetInt("length"); err != nil {
		return nil, fmt.Errorf("invalid length flag: %w", err)
	}
	if request.ModulusLength, err = flags.GetInt("modulus-length"); err != nil {
		return nil, fmt.Errorf("invalid modulus-length flag: %w", err)
	}

	hash, err := flags.GetString("hash")
	if err != nil {
		return nil, fmt.Errorf("invalid hash flag: %w", err)
	}
	if hash != "" {
		if request.Hash, err = webcrypto.NormalizeHash(hash); err != nil {
			return nil, err
		}
	}

	curve, err := flags.GetString("curve")
	if err != nil {
		return nil, fmt.Errorf("invalid curve flag: %w", err)
	}
	if curve != "" {
		if request.NamedCurve, err = webcrypto.NormalizeCurve(curve); err != nil {
			return nil, err
		}
	}

	return request, nil
}

// InitKeyCommands registers the keygen command.
func InitKeyCommands(rootCmd *cobra.Command) error {
	handler, err := NewKeyCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create key command handler %w", err)
	}

	var keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key or key pair and print it as JWK",
		Args:  cobra.NoArgs,
		RunE:  handler.KeygenCmd,
	}
	keygenCmd.Flags().StringP("algorithm", "a", "", "Algorithm name, e.g. AES-GCM, HMAC, RSA-PSS, ECDSA")
	keygenCmd.Flags().IntP("length", "", 0, "Key length in bits (AES default 256, HMAC default hash block size)")
	keygenCmd.Flags().StringP("hash", "", "", "Hash for HMAC and RSA keys (default SHA-256)")
	keygenCmd.Flags().StringP("curve", "", "", "Named curve for ECDSA and ECDH keys (default P-521)")
	keygenCmd.Flags().IntP("modulus-length", "", 0, "RSA modulus length in bits (default 2048)")
	if err := keygenCmd.MarkFlagRequired("algorithm"); err != nil {
		return fmt.Errorf("failed to mark algorithm flag required: %w", err)
	}
	rootCmd.AddCommand(keygenCmd)

	return nil
}
