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


package core

import "fmt"

// ValidateAttachment validates an AttachmentRecord before processing.
//
// Validation rules:
//   - ID must not be empty
//   - at least one of SourceURL, MediaID, Data must be present
//
// NOT validated (populated later):
//   - Strategy (set by the fetcher)
func ValidateAttachment(att *AttachmentRecord) error {
	if att == nil {
		return fmt.Errorf("%w: attachment is nil", ErrInvalidAttachment)
	}
	if att.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, ErrEmptyAttachmentID)
	}
	if att.SourceURL == "" && att.MediaID == "" && len(att.Data) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAttachment, ErrNoFetchSource)
	}
	return nil
}

// ValidateNote validates a StructuredNote according to domain rules.
//
// Validation rules:
//   - task statuses must be done or todo
//   - the note must carry some content (title, summary, tasks, notes,
//     reminders, or keywords)
func ValidateNote(note *StructuredNote) error {
	if note == nil {
		return fmt.Errorf("%w: note is nil", ErrInvalidNote)
	}
	for _, t := range note.Tasks {
		if t.Status != TaskDone && t.Status != TaskTodo {
			return fmt.Errorf("%w: %w: %q", ErrInvalidNote, ErrInvalidTaskStatus, t.Status)
		}
	}
	if note.Title == "" && note.Summary == "" && len(note.Tasks) == 0 &&
		len(note.Notes) == 0 && len(note.Reminders) == 0 && len(note.Keywords) == 0 {
		return fmt.Errorf("%w: note is empty", ErrInvalidNote)
	}
	return nil
}

// ValidateStage checks that a stage holds a known value.
func ValidateStage(s Stage) error {
	if s < StageDiscovered || s > StageFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidStage, s)
	}
	return nil
}

// ValidateTransition checks that moving from one stage to another never rolls
// the state machine backward. StageFailed is allowed from any non-terminal
// stage.
func ValidateTransition(from, to Stage) error {
	if err := ValidateStage(to); err != nil {
		return err
	}
	if to == StageFailed {
		return nil
	}
	if from != 0 && to < from {
		return fmt.Errorf("%w: %s -> %s", ErrStageRollback, from, to)
	}
	return nil
}

// NormalizeNote fills task statuses outside the known set with todo and trims
// blank list entries. The structuring collaborator occasionally emits such
// records; normalizing once here keeps every consumer simple.
func NormalizeNote(note *StructuredNote) {
	if note == nil {
		return
	}
	for i, t := range note.Tasks {
		if t.Status != TaskDone && t.Status != TaskTodo {
			note.Tasks[i].Status = TaskTodo
		}
	}
	note.Keywords = dropBlank(note.Keywords)
	note.Notes = dropBlank(note.Notes)
	note.Reminders = dropBlank(note.Reminders)
	kept := note.Tasks[:0]
	for _, t := range note.Tasks {
		if t.Text != "" {
			kept = append(kept, t)
		}
	}
	note.Tasks = kept
}

func dropBlank(items []string) []string {
	kept := items[:0]
	for _, s := range items {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return kept
}
