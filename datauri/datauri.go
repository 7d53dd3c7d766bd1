// Copyright 2026 Shelfworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package datauri converts binary payloads to and from their stored text
// form. Payloads persist as base64 text because every backing store handles
// plain strings reliably; DecodeText is the inverse of EncodeText and also
// accepts the embeddable URI form produced by Format.
package datauri

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMIMEType is used by Format when no MIME type is supplied.
const DefaultMIMEType = "application/octet-stream"

// chunkSize is how many raw bytes are fed to the encoder per write. Chunking
// keeps peak memory at one output buffer even for multi-megabyte payloads.
const chunkSize = 8 * 1024

// EncodeText encodes b as base64 text. The empty input encodes to the empty
// string.
func EncodeText(b []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(b)))

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for off := 0; off < len(b); off += chunkSize {
		end := off + chunkSize
		if end > len(b) {
			end = len(b)
		}
		enc.Write(b[off:end]) // writes to a strings.Builder cannot fail
	}
	enc.Close()

	return sb.String()
}

// DecodeText decodes text produced by EncodeText back into bytes. A URI
// prefix is tolerated: everything up to and including the first comma is
// discarded, so a full data URI decodes to the same bytes as the bare form.
func DecodeText(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding payload text: %w", err)
	}
	return b, nil
}

// Format builds a self-contained data URI embedding b. An empty mimeType
// falls back to DefaultMIMEType.
func Format(mimeType string, b []byte) string {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return "data:" + mimeType + ";base64," + EncodeText(b)
}
