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


package core

import (
	"fmt"
	"strings"
)

// ValidateDraft validates a Draft according to domain rules.
//
// Validation rules:
//   - Title must not be empty or whitespace-only
//   - FileType must not be empty
//
// NOT validated (assigned by the catalog):
//   - Id
//   - AddedDate
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, ErrEmptyTitle)
	}

	if strings.TrimSpace(d.FileType) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, ErrEmptyFileType)
	}

	return nil
}
