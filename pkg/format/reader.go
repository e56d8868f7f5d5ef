package format

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Reader separates a share file's metadata header from its binary body.
type Reader struct {
	Header *Header
	Body   io.Reader
}

// NewReader parses a share stream. It consumes the text header and
// returns a Reader whose Body is positioned at the start of the raw share
// bytes. A stream without a header marker (a headerless share file) is
// rejected with an error.
func NewReader(r io.Reader) (*Reader, error) {
	bufReader := bufio.NewReader(r)

	foundHeader := false
	for i := 0; i < 50; i++ {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading stream while looking for header: %w", err)
		}
		if strings.TrimSpace(line) == HeaderMarker {
			foundHeader = true
			break
		}
	}
	if !foundHeader {
		return nil, fmt.Errorf("could not find %q marker", HeaderMarker)
	}

	var jsonBuilder bytes.Buffer
	foundBody := false
	for {
		line, err := bufReader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading stream while reading header json: %w", err)
		}
		if strings.TrimSpace(line) == BodyMarker {
			foundBody = true
			break
		}
		jsonBuilder.WriteString(line)
	}
	if !foundBody {
		return nil, fmt.Errorf("could not find %q marker", BodyMarker)
	}

	header := &Header{}
	if err := json.Unmarshal(jsonBuilder.Bytes(), header); err != nil {
		return nil, fmt.Errorf("parsing header json: %w", err)
	}
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("header validation failed: %w", err)
	}

	return &Reader{Header: header, Body: bufReader}, nil
}
