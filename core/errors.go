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

import "errors"

// Domain validation errors
var (
	// ErrInvalidNote indicates a StructuredNote failed validation.
	ErrInvalidNote = errors.New("invalid structured note")

	// ErrInvalidAttachment indicates an AttachmentRecord failed validation.
	ErrInvalidAttachment = errors.New("invalid attachment record")

	// ErrEmptyAttachmentID indicates an attachment is missing its identifier.
	ErrEmptyAttachmentID = errors.New("attachment id cannot be empty")

	// ErrNoFetchSource indicates an attachment carries no way to obtain bytes.
	ErrNoFetchSource = errors.New("attachment has no link, media id, or inline payload")

	// ErrInvalidTaskStatus indicates a task status outside {done, todo}.
	ErrInvalidTaskStatus = errors.New("task status must be done or todo")

	// ErrInvalidStage indicates an unknown processing stage value.
	ErrInvalidStage = errors.New("invalid processing stage")

	// ErrStageRollback indicates an attempted backward stage transition.
	ErrStageRollback = errors.New("processing stage cannot move backward")
)
