package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/proxy-sskr/sskr/pkg/format"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/proxy-sskr/sskr/pkg/stego"
	"github.com/spf13/cobra"
)

var (
	genGroupThreshold int
	genGroupsSpec     string
	genOutDir         string
	genHeaderless     bool
	genCarrier        string
)

var generateCmd = &cobra.Command{
	Use:   "generate [secret-file]",
	Short: "Split a secret into shares under a two-level threshold policy",
	Long: `generate reads a 16-32 byte secret (raw binary, even length) and splits
it into shares arranged into groups.

Example:
  sskr generate secret.bin --group-threshold 1 --groups 2:3

  This creates one group of 3 shares; any 2 recover the secret.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secretPath := args[0]

		groups, err := parseGroups(genGroupsSpec)
		if err != nil {
			return err
		}

		secret, err := os.ReadFile(secretPath)
		if err != nil {
			return fmt.Errorf("reading secret file: %w", err)
		}

		if genOutDir == "" {
			genOutDir = "."
		}
		if err := os.MkdirAll(genOutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		var carrierImg image.Image
		if genCarrier != "" {
			f, err := os.Open(genCarrier)
			if err != nil {
				return fmt.Errorf("opening carrier image: %w", err)
			}
			carrierImg, _, err = image.Decode(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("decoding carrier image: %w", err)
			}
		}

		fmt.Println("Generating shares...")
		shares, err := sskr.GenerateShares(genGroupThreshold, groups, secret, random.CryptoSource{}, mac.HMACSHA256{})
		if err != nil {
			return fmt.Errorf("generating shares: %w", err)
		}

		envelopeID := fmt.Sprintf("%04x", shares[0].ID)

		for _, s := range shares {
			buf, err := s.Serialize()
			if err != nil {
				return fmt.Errorf("serializing share: %w", err)
			}

			baseName := fmt.Sprintf("%s_g%d_m%d", envelopeID, s.GroupIndex, s.MemberIndex)

			if carrierImg != nil {
				stegoImg, err := stego.EmbedShare(carrierImg, s)
				if err != nil {
					return fmt.Errorf("embedding share in carrier: %w", err)
				}
				outPath := filepath.Join(genOutDir, baseName+".png")
				outFile, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating output image: %w", err)
				}
				if err := png.Encode(outFile, stegoImg); err != nil {
					outFile.Close()
					return fmt.Errorf("encoding output image: %w", err)
				}
				outFile.Close()
				fmt.Printf("Wrote %s\n", outPath)
				continue
			}

			outPath := filepath.Join(genOutDir, baseName+".share")
			outFile, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}

			header := &format.Header{
				EnvelopeID:      envelopeID,
				GroupIndex:      int(s.GroupIndex),
				GroupCount:      int(s.GroupCount),
				GroupThreshold:  int(s.GroupThreshold),
				MemberIndex:     int(s.MemberIndex),
				MemberThreshold: int(s.MemberThreshold),
			}
			writer := format.NewWriter(outFile)
			if err := writer.Write(header, buf, genHeaderless); err != nil {
				outFile.Close()
				return fmt.Errorf("writing share file: %w", err)
			}
			outFile.Close()
			fmt.Printf("Wrote %s\n", outPath)
		}

		fmt.Printf("Done. Envelope id %s, %d share(s) written.\n", envelopeID, len(shares))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genGroupThreshold, "group-threshold", 1, "Number of groups required to recover the secret")
	generateCmd.Flags().StringVar(&genGroupsSpec, "groups", "", "Comma-separated threshold:count pairs, e.g. 2:3,3:5")
	generateCmd.Flags().StringVarP(&genOutDir, "destination", "d", "", "Directory to write shares into (default: current directory)")
	generateCmd.Flags().BoolVar(&genHeaderless, "headerless", false, "Do not write metadata headers alongside share files")
	generateCmd.Flags().StringVar(&genCarrier, "carrier", "", "Carrier PNG image; when set, shares are hidden inside copies of it instead of written as .share files")

	generateCmd.MarkFlagRequired("groups")
}
