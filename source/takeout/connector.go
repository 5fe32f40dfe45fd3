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


// Package takeout reads a Google Keep Takeout export as a note source.
//
// A Takeout export holds one JSON file per note plus the attachment image
// files next to them. Attachments are loaded eagerly into memory since a
// Takeout directory is local and note images are small.
package takeout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/inkdex/inkdex/core"
	"github.com/inkdex/inkdex/source"
)

// Connector implements source.Connector over a Takeout directory.
type Connector struct {
	dir    string
	logger *slog.Logger
}

var _ source.Connector = (*Connector)(nil)

// NewConnector creates a connector reading from the given directory.
func NewConnector(dir string) (*Connector, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Connector{
		dir:    dir,
		logger: slog.Default().With("component", "takeout-connector"),
	}, nil
}

// takeoutNote mirrors the JSON shape of a Keep note in a Takeout export.
type takeoutNote struct {
	Title                   string `json:"title"`
	TextContent             string `json:"textContent"`
	UserEditedTimestampUsec int64  `json:"userEditedTimestampUsec"`
	IsTrashed               bool   `json:"isTrashed"`
	Labels                  []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Attachments []struct {
		FilePath string `json:"filePath"`
		Mimetype string `json:"mimetype"`
	} `json:"attachments"`
}

// ListNotes scans the export directory for note JSON files matching the
// filter. Trashed notes and notes without attachments are skipped.
func (c *Connector) ListNotes(ctx context.Context, filter source.Filter) ([]*core.NoteRecord, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	// Stable order across passes
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var notes []*core.NoteRecord
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := c.readNote(name)
		if err != nil {
			c.logger.Warn("skipping unreadable note file", "file", name, "err", err)
			continue
		}
		if record == nil || len(record.Attachments) == 0 {
			continue
		}
		if !filter.Matches(record) {
			continue
		}
		notes = append(notes, record)
	}

	c.logger.Debug("listed takeout notes", "total_files", len(names), "matched", len(notes))
	return notes, nil
}

func (c *Connector) readNote(name string) (*core.NoteRecord, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, err
	}

	var raw takeoutNote
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.IsTrashed {
		return nil, nil
	}

	noteID := strings.TrimSuffix(name, ".json")
	record := &core.NoteRecord{
		SourceID:  noteID,
		Title:     raw.Title,
		UpdatedAt: time.UnixMicro(raw.UserEditedTimestampUsec).UTC(),
	}
	for _, l := range raw.Labels {
		record.Labels = append(record.Labels, l.Name)
	}

	for _, att := range raw.Attachments {
		blob, err := os.ReadFile(filepath.Join(c.dir, filepath.Base(att.FilePath)))
		if err != nil {
			c.logger.Warn("attachment file missing", "note", noteID, "file", att.FilePath, "err", err)
			continue
		}
		record.Attachments = append(record.Attachments, core.AttachmentRecord{
			ID:        noteID + "/" + filepath.Base(att.FilePath),
			MediaKind: att.Mimetype,
			Data:      blob,
		})
	}

	return record, nil
}
