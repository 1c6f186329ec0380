// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// TemplateFile is the YAML layout accepted by LoadTemplates:
//
//	seeded:
//	  Fiction/Creative: "Write a short story inspired by: {{.SeedWords}}."
//	general:
//	  Fiction/Creative: "Write a short story about an unexpected discovery."
//
// An omitted section keeps the built-in templates for that strategy.
type TemplateFile struct {
	Seeded  map[string]string `yaml:"seeded"`
	General map[string]string `yaml:"general"`
}

// LoadTemplates reads and parses a template override file.
func LoadTemplates(path string) (*TemplateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	var tf TemplateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	if _, err := templateSet(orDefault(tf.Seeded, seededTemplates)); err != nil {
		return nil, fmt.Errorf("seeded templates: %w", err)
	}
	if _, err := templateSet(orDefault(tf.General, generalTemplates)); err != nil {
		return nil, fmt.Errorf("general templates: %w", err)
	}
	return &tf, nil
}

func orDefault(m, def map[string]string) map[string]string {
	if len(m) == 0 {
		return def
	}
	return m
}

var seededTemplates = map[string]string{
	"Technical/Scientific":     "Write a clear, accessible explanation of a scientific concept. Draw inspiration from themes related to: {{.SeedWords}}. Focus on making complex ideas understandable.",
	"News/Informative":         "Write a short, informative news-style article. Let the following concepts guide your topic choice: {{.SeedWords}}. Write naturally about current events or important information.",
	"Fiction/Creative":         "Write a short, engaging creative story. Use these concepts as thematic inspiration: {{.SeedWords}}. Let the story flow naturally without forcing specific words.",
	"General Knowledge/How-To": "Write a helpful 'how-to' guide or educational explanation. Draw inspiration from these areas: {{.SeedWords}}. Focus on practical, useful information.",
}

var generalTemplates = map[string]string{
	"Technical/Scientific":     "Write a clear, accessible explanation of a scientific concept like photosynthesis, black holes, or the theory of relativity. Focus on making complex ideas understandable to a general audience.",
	"News/Informative":         "Write a short, informative news-style article about a recent technological breakthrough, a significant global event, or a cultural festival. Write in a neutral, factual tone.",
	"Fiction/Creative":         "Write a short, engaging creative story about a character who makes an unexpected discovery, travels to a new place, or overcomes a personal challenge. Let the story flow naturally and use descriptive language.",
	"General Knowledge/How-To": "Write a helpful 'how-to' guide on a practical skill, such as how to bake bread, create a budget, or learn a new language. Focus on clear, step-by-step instructions.",
}

var textStyles = []string{
	"descriptive text", "explanatory text", "narrative text", "instructional text",
	"informative text", "analytical text", "persuasive text", "reflective text",
	"conversational text", "formal text", "casual text", "detailed text",
}

var contentTypes = []string{
	"exploring a concept", "describing a process", "explaining an idea",
	"discussing a topic", "analyzing a situation", "comparing things",
	"telling about an experience", "giving an overview", "providing details",
	"sharing information", "examining something", "investigating a subject",
}

var subjectAreas = []string{
	"everyday life", "human experiences", "natural phenomena", "social interactions",
	"cultural practices", "technological developments", "historical events", "scientific discoveries",
	"artistic expressions", "personal development", "problem-solving", "learning processes",
	"communication", "relationships", "work and careers", "health and wellness",
	"environment and nature", "innovation and creativity", "traditions and customs", "future possibilities",
}

var approaches = []string{
	"using clear, accessible language", "with specific examples and details",
	"in an engaging and readable style", "focusing on practical aspects",
	"with balanced perspectives", "using concrete illustrations",
	"in a thoughtful manner", "with attention to important details",
	"in a well-organized way", "using everyday language",
}

var scopeModifiers = []string{
	"Write a substantial piece", "Create a detailed explanation", "Develop a comprehensive discussion",
	"Provide an in-depth look at", "Write an extensive exploration of", "Create a thorough examination of",
	"Develop a complete description of", "Write a full account of", "Provide a comprehensive overview of",
}

// spokenScenarios each take the title as their single %s verb.
var spokenScenarios = []string{
	"Imagine you're chatting with a friend about the movie '%s'. What would you say? Talk about your thoughts, feelings, and reactions in a casual, conversational way.",
	"Pretend you're discussing '%s' with someone at a party. Share your opinions, favorite parts, and why you like or dislike it, using everyday language.",
	"Think about '%s' as if you're telling a story to someone. Describe it in a natural, spoken style, like you're speaking to a friend over coffee.",
	"Recall '%s' and talk about it as if you're recommending it to someone. Use conversational language, pauses, and personal anecdotes.",
	"Picture yourself watching '%s' and then describing it to a family member. Speak naturally, with enthusiasm or criticism as it comes to mind.",
	"Discuss '%s' as if you're texting or calling a friend. Keep it informal, with short sentences and personal touches.",
	"Imagine '%s' sparked a debate. Argue your point casually, using spoken phrases like 'you know' or 'I mean'.",
	"Tell someone about '%s' as if you're recounting it after seeing it. Use a storytelling voice, with details that come up in conversation.",
}

var spokenInstructions = []string{
	"Use contractions, filler words like 'um' or 'you know', and make it sound like real speech.",
	"Include personal opinions, questions, and responses as if in a dialogue.",
	"Keep it natural and flowing, not too formal or structured.",
	"Vary sentence length and add enthusiasm or hesitation to mimic spoken language.",
}
