package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

// Glossary mirrors the glossary document for schema generation: site keys
// (plus the required "default") mapped to their config.
type Glossary map[string]SiteConfig

type SiteConfig struct {
	Characters       map[string]Character `json:"characters" jsonschema_description:"Characters keyed by canonical name"`
	Mode             string               `json:"mode,omitempty" jsonschema_description:"Reserved for compatibility; ignored"`
	PrimaryCharacter string               `json:"primaryCharacter,omitempty" jsonschema_description:"Protagonist name; breaks attribution ties in their favour"`
	ForceGender      string               `json:"forceGender,omitempty" jsonschema:"enum=male,enum=female" jsonschema_description:"Rewrite every pronoun on this site to one gender"`
	CarryParagraphs  *int                 `json:"carryParagraphs,omitempty" jsonschema:"minimum=0,maximum=5,default=2" jsonschema_description:"How many following unnamed paragraphs inherit the last attributed gender"`
}

type Character struct {
	Gender  string   `json:"gender" jsonschema:"enum=male,enum=female,enum=unknown" jsonschema_description:"Gender the character's pronouns should carry"`
	Aliases []string `json:"aliases,omitempty" jsonschema_description:"Nicknames, titles or short forms the text uses for this character"`
}

// Suggestion is the structured output asked of a model when proposing
// glossary entries from a text sample.
type Suggestion struct {
	Characters []SuggestedCharacter `json:"characters" jsonschema_description:"Characters found in the text"`
}

type SuggestedCharacter struct {
	Name    string   `json:"name" jsonschema_description:"Canonical character name as written in the text"`
	Gender  string   `json:"gender" jsonschema:"enum=male,enum=female,enum=unknown" jsonschema_description:"Gender implied by the original story, not by pronouns in this translation"`
	Aliases []string `json:"aliases" jsonschema_description:"Nicknames or alternative names used for this character"`
}

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	GlossarySchema   = generateSchema[Glossary]()
	SuggestionSchema = generateSchema[Suggestion]()
)

func SuggestionResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "glossary_suggestion",
		Description: openai.String("Characters and their genders extracted from a story excerpt"),
		Schema:      SuggestionSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
