package cmd

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/proxy-sskr/sskr/pkg/wrap"
	"github.com/spf13/cobra"
)

var unwrapOutPath string

var unwrapCmd = &cobra.Command{
	Use:   "unwrap [directory]",
	Short: "Recover a file previously sealed with wrap",
	Long: `unwrap looks for a sealed .envelope file and a threshold of .share
files in the given directory (current directory if omitted), recovers
the envelope's key, and writes the original file contents back out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := "."
		if len(args) > 0 {
			sourceDir = args[0]
		}

		entries, err := os.ReadDir(sourceDir)
		if err != nil {
			return fmt.Errorf("reading directory: %w", err)
		}

		var envelopePath string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".envelope") {
				envelopePath = filepath.Join(sourceDir, e.Name())
				break
			}
		}
		if envelopePath == "" {
			return fmt.Errorf("no .envelope file found in %s", sourceDir)
		}

		envFile, err := os.Open(envelopePath)
		if err != nil {
			return fmt.Errorf("opening envelope file: %w", err)
		}
		defer envFile.Close()

		var env wrap.Envelope
		if err := gob.NewDecoder(envFile).Decode(&env); err != nil {
			return fmt.Errorf("decoding envelope: %w", err)
		}

		groups, err := loadShareGroups(sourceDir)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("no share files found in %s", sourceDir)
		}

		var recoveredKey []byte
		for _, raw := range groups {
			buf, err := sskr.SerializeAll(raw)
			if err != nil {
				continue
			}
			acc := sskr.NewAccumulator(mac.HMACSHA256{})
			key, ok, err := acc.CombineShares(len(raw), buf)
			if err != nil || !ok {
				continue
			}
			recoveredKey = key
			break
		}
		if recoveredKey == nil {
			return fmt.Errorf("could not recover the envelope key from the available shares")
		}

		plaintext, err := wrap.Open(&env, recoveredKey)
		if err != nil {
			return fmt.Errorf("opening envelope: %w", err)
		}

		outPath := unwrapOutPath
		if outPath == "" {
			outPath = strings.TrimSuffix(filepath.Base(envelopePath), ".envelope")
			outPath = filepath.Join(sourceDir, outPath)
		}
		if err := os.WriteFile(outPath, plaintext, 0644); err != nil {
			return fmt.Errorf("writing recovered file: %w", err)
		}

		fmt.Printf("Recovered %s\n", outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unwrapCmd)

	unwrapCmd.Flags().StringVarP(&unwrapOutPath, "output", "o", "", "Path to write the recovered file to")
}
