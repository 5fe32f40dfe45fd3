package openai

import "fmt"

const noteResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "title": {
      "type": "string"
    },
    "data": {
      "type": "string"
    },
    "summary": {
      "type": "string"
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"},
      "maxItems": 5
    },
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "task": {"type": "string"},
          "status": {"type": "string", "enum": ["done", "todo"]}
        },
        "required": ["task", "status"],
        "additionalProperties": false
      }
    },
    "notes": {
      "type": "array",
      "items": {"type": "string"}
    },
    "reminders": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "required": ["title", "data", "summary", "keywords", "tasks", "notes", "reminders"],
  "additionalProperties": false
}`

const structuringPromptTemplate = `You organize transcriptions of handwritten notes into JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Every part of the text must land in one of the fields; nothing is dropped.
- "title" is the note's heading if one exists, or a date in "dd/mm/yy" form for diary pages.
- "data" is the date found in the text in "dd/mm/yy" form, or an empty string.
- "summary" condenses the content into a single sentence.
- "keywords" holds at most 5 relevant keywords.
- Tasks marked with a check (✓, ✅, x) are "done"; unmarked tasks or ones marked ○, -, • are "todo".
- "reminders" holds things to remember or not forget; "notes" holds everything else.
- If a fragment is illegible, use surrounding context to fill the gap.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Weekly plan 28/05/25. Meet client (done). Finish report. Don't forget: call John at 2pm."
Output:
{
  "title": "Weekly plan",
  "data": "28/05/25",
  "summary": "Task planning for the week",
  "keywords": ["planning", "work"],
  "tasks": [
    {"task": "Meet client", "status": "done"},
    {"task": "Finish report", "status": "todo"}
  ],
  "notes": [],
  "reminders": ["Call John at 2pm"]
}`

const transcriptionPrompt = `The image contains handwritten text that must be transcribed and organized.
Transcribe precisely and faithfully; if a fragment is illegible, use surrounding context to fill the gap.
The page is laid out in blocks of text, tasks, notes, and reminders.

If the content fits, organize the transcription as JSON with the fields:
title (the heading if one exists, or the date as dd/mm/yy - weekday),
data (the date found in the text, or empty),
summary (one sentence),
keywords (up to 5 relevant keywords),
tasks (list of tasks with status done or todo),
notes (list of general annotations),
reminders (list of things to remember or not forget).
Every transcribed part must land in one of these fields.

If the page does not fit that shape, return the plain transcription instead.`

// buildStructuringPrompt creates the system prompt with the note schema embedded.
func buildStructuringPrompt() string {
	return fmt.Sprintf(structuringPromptTemplate, noteResponseSchema)
}
