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


package native

import "context"

// NewMemoryTier creates a fully capable tier for testing: an in-memory
// key/value store plus a file area rooted at dir (typically t.TempDir()).
// Caller must close the tier when done.
func NewMemoryTier(dir string) (*Tier, error) {
	kv, err := OpenMemoryKeyValue(nil)
	if err != nil {
		return nil, err
	}

	files, err := OpenFileArea(dir)
	if err != nil {
		kv.Close()
		return nil, err
	}

	if err := files.EnsureDir(context.Background(), PayloadsDir); err != nil {
		kv.Close()
		return nil, err
	}

	return New(kv, files, nil), nil
}
