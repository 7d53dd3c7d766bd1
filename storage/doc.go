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


// Package storage provides the tier abstraction for the tana catalog.
//
// This package defines the Tier interface that decouples the catalog facade
// from backend implementation. A tier is one complete persistence strategy
// for records and payloads; the facade selects exactly one at startup and
// dispatches every durable operation through it.
//
// # Constructor Return Type Pattern
//
// The tier Open constructors follow a strict "return interface" pattern to
// enforce abstraction and keep tiers interchangeable:
//
//	tier, err := sqlite.Open(dir, logger)  // returns storage.Tier interface
//
// Capability-injecting constructors (native.New, flat.New) return concrete
// types since the selector wires their capabilities explicitly.
//
// Tiers with extra capabilities expose them through optional interfaces
// (PayloadReferencer) discovered by type assertion, so the facade never
// branches on a tier's concrete type.
//
// # Architecture
//
// Three tiers of descending capability:
//
//   - native: structured key/value store plus a payload file area
//   - sqlite: two-collection transactional store in a single database file
//   - flat: whole catalog as one JSON value in a flat key/value file
//
// The sub-capabilities consumed by the native and flat tiers (KeyValue,
// FileArea, FlatKV) are themselves interfaces so tests can substitute
// failing or absent implementations.
//
// # Thread Safety
//
// All tier implementations must be safe for concurrent use from multiple
// goroutines.
//
// # Context Support
//
// Tier methods accept context.Context for cancellation at I/O boundaries.
// Pass context.Background() for operations without specific timeout
// requirements.
package storage
