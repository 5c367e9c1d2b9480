// Package summarize turns README content into a structured summary using a
// language model.
package summarize

import "strings"

// Schema is the JSON Schema the model output must satisfy.
const Schema = `{
  "type": "object",
  "properties": {
    "summary": {
      "type": "string",
      "description": "A concise summary of the GitHub repository"
    },
    "cool_facts": {
      "type": "array",
      "items": {"type": "string"},
      "description": "A list of interesting facts about the repository"
    }
  },
  "required": ["summary", "cool_facts"],
  "additionalProperties": false
}`

const promptTemplate = "Summarize this github repository from this readme file content:\n{readme}\n\n{schema}\n\nReturn your response in valid JSON format matching the schema above."

// BuildPrompt fills the summarization prompt with readme.
func BuildPrompt(readme string) string {
	r := strings.NewReplacer("{readme}", readme, "{schema}", Schema)
	return r.Replace(promptTemplate)
}
