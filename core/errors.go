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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDraft indicates a Draft failed validation.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyFileType indicates the FileType field is empty.
	ErrEmptyFileType = errors.New("file type cannot be empty")

	// ErrInvalidDate indicates a date string is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)
