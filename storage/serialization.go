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

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shelfworks/tana/core"
)

// EncodeRecords serializes a record collection to the canonical JSON array
// text stored by whole-collection tiers. A nil collection encodes as "[]".
func EncodeRecords(records []*core.Record) (string, error) {
	if records == nil {
		records = []*core.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding records: %w", err)
	}
	return string(data), nil
}

// DecodeRecords parses the JSON array text form back into records, sorted
// newest first.
func DecodeRecords(text string) ([]*core.Record, error) {
	var records []*core.Record
	if err := json.Unmarshal([]byte(text), &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	SortRecords(records)
	return records, nil
}

// SortRecords orders records newest first by added date. The sort is stable,
// so records sharing a date keep their existing relative order.
func SortRecords(records []*core.Record) {
	slices.SortStableFunc(records, func(a, b *core.Record) int {
		return b.AddedDate.Compare(a.AddedDate)
	})
}
