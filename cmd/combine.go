package cmd

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/proxy-sskr/sskr/pkg/format"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/proxy-sskr/sskr/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	combineOutFile string
	combineHex     bool
)

// combineCmd represents the combine command.
var combineCmd = &cobra.Command{
	Use:   "combine [directory]",
	Short: "Recover a secret from a set of share files",
	Long: `combine looks for .share and .png files in the given directory
(current directory if omitted), groups them by envelope id, and attempts
to recover the secret from each group found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := "."
		if len(args) > 0 {
			sourceDir = args[0]
		}

		groups, err := loadShareGroups(sourceDir)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("no share files found in %s", sourceDir)
		}

		for envelopeID, raw := range groups {
			fmt.Printf("Envelope %s: found %d share(s)\n", envelopeID, len(raw))
			acc := sskr.NewAccumulator(mac.HMACSHA256{})

			buf, err := sskr.SerializeAll(raw)
			if err != nil {
				fmt.Printf("  failed to serialize shares: %v\n", err)
				continue
			}

			secret, ok, err := acc.CombineShares(len(raw), buf)
			if err != nil {
				fmt.Printf("  combine failed: %v\n", err)
				continue
			}
			if !ok {
				fmt.Printf("  not enough shares yet to recover this secret\n")
				continue
			}

			if combineOutFile != "" {
				outPath := combineOutFile
				if len(groups) > 1 {
					outPath = fmt.Sprintf("%s.%s", combineOutFile, envelopeID)
				}
				if err := os.WriteFile(outPath, secret, 0600); err != nil {
					return fmt.Errorf("writing recovered secret: %w", err)
				}
				fmt.Printf("  recovered secret written to %s\n", outPath)
			} else if combineHex {
				fmt.Printf("  recovered secret: %x\n", secret)
			} else {
				fmt.Printf("  recovered secret (%d bytes); use --output to save or --hex to print\n", len(secret))
			}
		}

		return nil
	},
}

// loadShareGroups scans sourceDir for .share and image files, parses each
// into an sskr.Share, and groups them by envelope id.
func loadShareGroups(sourceDir string) (map[string][]sskr.Share, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	groups := make(map[string][]sskr.Share)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(sourceDir, e.Name())
		ext := strings.ToLower(filepath.Ext(e.Name()))

		switch ext {
		case ".png", ".jpg", ".jpeg":
			share, envelopeID, err := loadStegoShare(path)
			if err != nil {
				fmt.Printf("Skipping %s: %v\n", e.Name(), err)
				continue
			}
			groups[envelopeID] = append(groups[envelopeID], share)

		case ".share":
			share, envelopeID, err := loadFormattedShare(path)
			if err != nil {
				fmt.Printf("Skipping %s: %v\n", e.Name(), err)
				continue
			}
			groups[envelopeID] = append(groups[envelopeID], share)
		}
	}

	return groups, nil
}

func loadStegoShare(path string) (sskr.Share, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return sskr.Share{}, "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return sskr.Share{}, "", fmt.Errorf("decoding image: %w", err)
	}

	share, err := stego.ExtractShare(img)
	if err != nil {
		return sskr.Share{}, "", fmt.Errorf("extracting share: %w", err)
	}
	return share, fmt.Sprintf("%04x", share.ID), nil
}

func loadFormattedShare(path string) (sskr.Share, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return sskr.Share{}, "", err
	}
	defer f.Close()

	var body io.Reader = f
	envelopeID := ""

	reader, err := format.NewReader(f)
	if err == nil {
		body = reader.Body
		envelopeID = reader.Header.EnvelopeID
	} else {
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return sskr.Share{}, "", fmt.Errorf("rewinding headerless share: %w", seekErr)
		}
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		return sskr.Share{}, "", fmt.Errorf("reading share body: %w", err)
	}

	share, err := sskr.ParseShare(buf)
	if err != nil {
		return sskr.Share{}, "", fmt.Errorf("parsing share: %w", err)
	}
	if envelopeID == "" {
		envelopeID = fmt.Sprintf("%04x", share.ID)
	}
	return share, envelopeID, nil
}

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&combineOutFile, "output", "o", "", "Write the recovered secret to this file")
	combineCmd.Flags().BoolVar(&combineHex, "hex", false, "Print the recovered secret as hex instead of saving it")
}
