// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "JobRequirements", "BrandVoice")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// SearchIntentSchema returns the extraction schema for free-text recruiting
// queries. Ambiguous fields must come back null/empty, never guessed.
func SearchIntentSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "SearchIntent",
		Description: `You are an expert recruiting query parser. Your task is to extract candidate
search criteria from a free-text hiring request.
IMPORTANT: Only extract what the text states. If the text does not mention a
field, return null (or an empty list) for it - never invent a value.`,
		Fields: []SchemaField{
			{
				Name:        "job_title",
				Type:        "\"string\"",
				Description: "Role or job title being hired for",
				Required:    true,
			},
			{
				Name:        "location",
				Type:        "\"string\"",
				Description: "Geographic location to search in",
				Required:    true,
			},
			{
				Name:        "company",
				Type:        "\"string\"",
				Description: "Current-company filter, if the text names one",
				Required:    false,
			},
			{
				Name:        "skills",
				Type:        "[\"string\"]",
				Description: "Skills the candidate must have, if any are named",
				Required:    false,
			},
			{
				Name:        "max_results",
				Type:        "number",
				Description: "Requested number of results, if the text states one",
				Required:    false,
			},
		},
	}
}
