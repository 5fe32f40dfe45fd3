// Copyright 2026 The Inkdex Authors
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


// Package storage provides the storage abstraction layer for inkdex.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Repositories
//
//   - LedgerRepository: the durable processing ledger. One record per
//     attachment tracks how far it has advanced through the ingestion
//     stages, together with the intermediate artifacts needed to resume
//     without repeating paid external calls. A content-hash index backs
//     duplicate detection.
//   - VectorRepository: indexed note entries keyed by content hash, with
//     brute-force similarity search over their embedding vectors.
//
// # Constructor Return Type Pattern
//
// Public constructors return the repository interfaces, not concrete
// types:
//
//	ledger, err := badger.NewLedgerRepository(path)  // returns storage.LedgerRepository
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
//
// # Corruption Handling
//
// A ledger record that fails to decode is surfaced as ErrLedgerCorrupt.
// The ledger is the exactly-once guarantee; implementations never drop,
// repair, or reinitialize a corrupt record on their own.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
