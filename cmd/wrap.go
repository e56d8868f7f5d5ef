package cmd

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proxy-sskr/sskr/pkg/format"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/wrap"
	"github.com/spf13/cobra"
)

var (
	wrapGroupThreshold int
	wrapGroupsSpec     string
	wrapOutDir         string
)

var wrapCmd = &cobra.Command{
	Use:   "wrap [file]",
	Short: "Seal an arbitrary file behind a two-level share policy",
	Long: `wrap compresses and AES-256-GCM-seals a file of any size under a
freshly drawn key, then splits that key under the given group policy. The
sealed envelope is written alongside the shares; it is safe to store or
transmit in the open, since it is useless without a threshold of shares.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		groups, err := parseGroups(wrapGroupsSpec)
		if err != nil {
			return err
		}

		plaintext, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}

		if wrapOutDir == "" {
			wrapOutDir = "."
		}
		if err := os.MkdirAll(wrapOutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		env, shares, err := wrap.Seal(plaintext, wrapGroupThreshold, groups, random.CryptoSource{}, mac.HMACSHA256{})
		if err != nil {
			return fmt.Errorf("sealing file: %w", err)
		}

		base := filepath.Base(inputPath)
		envelopePath := filepath.Join(wrapOutDir, base+".envelope")
		envFile, err := os.Create(envelopePath)
		if err != nil {
			return fmt.Errorf("creating envelope file: %w", err)
		}
		defer envFile.Close()
		if err := gob.NewEncoder(envFile).Encode(env); err != nil {
			return fmt.Errorf("writing envelope: %w", err)
		}
		fmt.Printf("Wrote %s\n", envelopePath)

		envelopeID := fmt.Sprintf("%04x", shares[0].ID)
		for _, s := range shares {
			buf, err := s.Serialize()
			if err != nil {
				return fmt.Errorf("serializing share: %w", err)
			}
			shareName := fmt.Sprintf("%s_g%d_m%d.share", envelopeID, s.GroupIndex, s.MemberIndex)
			sharePath := filepath.Join(wrapOutDir, shareName)
			shareFile, err := os.Create(sharePath)
			if err != nil {
				return fmt.Errorf("creating share file: %w", err)
			}
			header := &format.Header{
				EnvelopeID:      envelopeID,
				GroupIndex:      int(s.GroupIndex),
				GroupCount:      int(s.GroupCount),
				GroupThreshold:  int(s.GroupThreshold),
				MemberIndex:     int(s.MemberIndex),
				MemberThreshold: int(s.MemberThreshold),
			}
			if err := format.NewWriter(shareFile).Write(header, buf, false); err != nil {
				shareFile.Close()
				return fmt.Errorf("writing share file: %w", err)
			}
			shareFile.Close()
			fmt.Printf("Wrote %s\n", sharePath)
		}

		fmt.Printf("Done. Envelope id %s, %d share(s) written.\n", envelopeID, len(shares))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wrapCmd)

	wrapCmd.Flags().IntVar(&wrapGroupThreshold, "group-threshold", 1, "Number of groups required to recover the envelope key")
	wrapCmd.Flags().StringVar(&wrapGroupsSpec, "groups", "", "Comma-separated threshold:count pairs, e.g. 2:3,3:5")
	wrapCmd.Flags().StringVarP(&wrapOutDir, "destination", "d", "", "Directory to write the envelope and shares into")

	wrapCmd.MarkFlagRequired("groups")
}
