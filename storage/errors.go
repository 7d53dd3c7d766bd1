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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record or payload was not found.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates that a storage capability the operation
	// depends on could not be acquired.
	ErrUnavailable = errors.New("storage capability unavailable")

	// ErrPayloadUnavailable indicates that the active tier cannot persist
	// payload content. Record metadata is unaffected.
	ErrPayloadUnavailable = errors.New("payload storage unavailable")

	// ErrPayloadIntegrity indicates that stored payload content does not
	// match its recorded digest.
	ErrPayloadIntegrity = errors.New("payload integrity check failed")

	// ErrClosed indicates that the storage tier is closed.
	ErrClosed = errors.New("storage is closed")
)
