package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Writer writes a single share to an underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter constructs a Writer around w (typically an os.File).
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes header and the raw share bytes to the underlying
// writer. If headerless is true, the human-readable banner and JSON
// metadata are omitted entirely and only the share bytes are written -
// useful for custodians who want their share file to look like opaque
// noise rather than announce what it is.
func (fw *Writer) Write(header *Header, shareBytes []byte, headerless bool) error {
	if !headerless {
		if err := header.Validate(); err != nil {
			return fmt.Errorf("invalid header: %w", err)
		}

		banner := fmt.Sprintf(MagicBanner, header.MemberIndex, header.GroupIndex)
		if _, err := fmt.Fprint(fw.w, banner); err != nil {
			return fmt.Errorf("writing banner: %w", err)
		}
		if _, err := fmt.Fprintln(fw.w, HeaderMarker); err != nil {
			return fmt.Errorf("writing header marker: %w", err)
		}

		headerBytes, err := json.Marshal(header)
		if err != nil {
			return fmt.Errorf("marshaling header: %w", err)
		}
		if _, err := fw.w.Write(headerBytes); err != nil {
			return fmt.Errorf("writing header json: %w", err)
		}
		if _, err := fmt.Fprintln(fw.w); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(fw.w, BodyMarker); err != nil {
			return fmt.Errorf("writing body marker: %w", err)
		}
	}

	if _, err := fw.w.Write(shareBytes); err != nil {
		return fmt.Errorf("writing share body: %w", err)
	}
	return nil
}
