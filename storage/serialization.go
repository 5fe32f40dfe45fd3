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


package storage

import (
	"time"

	"github.com/inkdex/inkdex/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for the stored record types, composed from mus-go
// primitives. Field order is part of the on-disk format and must never
// change; append new fields at the end only.
var (
	timeMUS   = timeSer{}
	floatsMUS = ord.NewSliceSer[float32](raw.Float32)
	bytesMUS  = ord.NewSliceSer[byte](raw.Byte)

	// ProcessingStateMUS serializes ledger records.
	ProcessingStateMUS = processingStateSer{}

	// IndexEntryMUS serializes vector-store entries.
	IndexEntryMUS = indexEntrySer{}

	noteMetaMUS = noteMetaSer{}
)

// timeSer stores timestamps as UnixMicro int64 varints.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

type processingStateSer struct{}

func (processingStateSer) Marshal(s core.ProcessingState, bs []byte) int {
	n := ord.String.Marshal(s.AttachmentID, bs)
	n += varint.Int.Marshal(int(s.Stage), bs[n:])
	n += varint.Int.Marshal(int(s.Resume), bs[n:])
	n += varint.Int.Marshal(s.Attempts, bs[n:])
	n += ord.String.Marshal(s.LastError, bs[n:])
	n += ord.String.Marshal(s.ContentHash, bs[n:])
	n += ord.String.Marshal(s.Transcript, bs[n:])
	n += bytesMUS.Marshal(s.NotePayload, bs[n:])
	n += timeMUS.Marshal(s.UpdatedAt, bs[n:])
	return n
}

func (processingStateSer) Unmarshal(bs []byte) (core.ProcessingState, int, error) {
	var s core.ProcessingState
	var n int

	id, n1, err := ord.String.Unmarshal(bs)
	n += n1
	if err != nil {
		return s, n, err
	}
	s.AttachmentID = id

	stage, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.Stage = core.Stage(stage)

	resume, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.Resume = core.Stage(resume)

	s.Attempts, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}

	s.LastError, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}

	s.ContentHash, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}

	s.Transcript, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}

	s.NotePayload, n1, err = bytesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}

	s.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return s, n, err
}

func (processingStateSer) Size(s core.ProcessingState) int {
	size := ord.String.Size(s.AttachmentID)
	size += varint.Int.Size(int(s.Stage))
	size += varint.Int.Size(int(s.Resume))
	size += varint.Int.Size(s.Attempts)
	size += ord.String.Size(s.LastError)
	size += ord.String.Size(s.ContentHash)
	size += ord.String.Size(s.Transcript)
	size += bytesMUS.Size(s.NotePayload)
	size += timeMUS.Size(s.UpdatedAt)
	return size
}

type noteMetaSer struct{}

func (noteMetaSer) Marshal(m core.NoteMeta, bs []byte) int {
	n := ord.String.Marshal(m.Title, bs)
	n += ord.String.Marshal(m.Date, bs[n:])
	n += ord.String.Marshal(m.Summary, bs[n:])
	n += ord.String.Marshal(m.Keywords, bs[n:])
	n += ord.String.Marshal(m.SourceID, bs[n:])
	n += ord.String.Marshal(m.AttachmentID, bs[n:])
	n += varint.Int.Marshal(m.TaskTotal, bs[n:])
	n += varint.Int.Marshal(m.TaskDone, bs[n:])
	n += varint.Int.Marshal(m.TaskTodo, bs[n:])
	n += timeMUS.Marshal(m.UpdatedAt, bs[n:])
	return n
}

func (noteMetaSer) Unmarshal(bs []byte) (core.NoteMeta, int, error) {
	var m core.NoteMeta
	var n, n1 int
	var err error

	for _, field := range []*string{
		&m.Title, &m.Date, &m.Summary, &m.Keywords, &m.SourceID, &m.AttachmentID,
	} {
		*field, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return m, n, err
		}
	}

	for _, field := range []*int{&m.TaskTotal, &m.TaskDone, &m.TaskTodo} {
		*field, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return m, n, err
		}
	}

	m.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return m, n, err
}

func (noteMetaSer) Size(m core.NoteMeta) int {
	size := ord.String.Size(m.Title)
	size += ord.String.Size(m.Date)
	size += ord.String.Size(m.Summary)
	size += ord.String.Size(m.Keywords)
	size += ord.String.Size(m.SourceID)
	size += ord.String.Size(m.AttachmentID)
	size += varint.Int.Size(m.TaskTotal)
	size += varint.Int.Size(m.TaskDone)
	size += varint.Int.Size(m.TaskTodo)
	size += timeMUS.Size(m.UpdatedAt)
	return size
}

type indexEntrySer struct{}

func (indexEntrySer) Marshal(e core.IndexEntry, bs []byte) int {
	n := ord.String.Marshal(e.VectorID, bs)
	n += floatsMUS.Marshal(e.Vector, bs[n:])
	n += noteMetaMUS.Marshal(e.Meta, bs[n:])
	n += ord.String.Marshal(e.Document, bs[n:])
	return n
}

func (indexEntrySer) Unmarshal(bs []byte) (core.IndexEntry, int, error) {
	var e core.IndexEntry
	var n int

	id, n1, err := ord.String.Unmarshal(bs)
	n += n1
	if err != nil {
		return e, n, err
	}
	e.VectorID = id

	e.Vector, n1, err = floatsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}

	e.Meta, n1, err = noteMetaMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}

	e.Document, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return e, n, err
}

func (indexEntrySer) Size(e core.IndexEntry) int {
	size := ord.String.Size(e.VectorID)
	size += floatsMUS.Size(e.Vector)
	size += noteMetaMUS.Size(e.Meta)
	size += ord.String.Size(e.Document)
	return size
}

// MarshalProcessingState serializes a ProcessingState to bytes.
func MarshalProcessingState(state *core.ProcessingState) []byte {
	buf := make([]byte, ProcessingStateMUS.Size(*state))
	ProcessingStateMUS.Marshal(*state, buf)
	return buf
}

// UnmarshalProcessingState deserializes a ProcessingState from bytes.
func UnmarshalProcessingState(data []byte) (*core.ProcessingState, error) {
	state, _, err := ProcessingStateMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(*entry))
	IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
