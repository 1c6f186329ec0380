// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt builds the prompts sent to the generation endpoint.
//
// A Strategy produces one PromptUnit per call. Four strategies exist:
// seeded (vocabulary words embedded in genre templates), general
// (self-contained genre templates), dynamic (five independently sampled
// axes), and spoken (conversational scenarios about a title). Exactly one
// is active per run. All randomness comes from the injected *rand.Rand, so
// a fixed seed reproduces the same prompt sequence.
package prompt

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"text/template"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// Strategy produces prompts for one run. Produce never fails and never blocks.
type Strategy interface {
	// Produce returns the next prompt and its genre label.
	Produce() types.PromptUnit

	// Name is the generation_strategy label recorded in StoryMetadata.
	Name() string

	// IDPrefix is the story_id prefix for units from this strategy.
	IDPrefix() string
}

// Template is a named prompt template. The text may reference {{.SeedWords}}.
type Template struct {
	Genre string
	tmpl  *template.Template
}

// NewTemplate parses text and checks that it renders.
func NewTemplate(genre, text string) (Template, error) {
	t, err := template.New(genre).Option("missingkey=error").Parse(text)
	if err != nil {
		return Template{}, fmt.Errorf("parsing template %q: %w", genre, err)
	}
	tpl := Template{Genre: genre, tmpl: t}
	if _, err := tpl.render("sample"); err != nil {
		return Template{}, fmt.Errorf("rendering template %q: %w", genre, err)
	}
	return tpl, nil
}

func (t Template) render(seedWords string) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, struct{ SeedWords string }{SeedWords: seedWords}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render fills the template. Templates are validated at construction, so a
// render failure can only come from the writer; the raw text is returned then.
func (t Template) Render(seedWords string) string {
	s, err := t.render(seedWords)
	if err != nil {
		return t.tmpl.Root.String()
	}
	return s
}

// templateSet builds Templates from a genre→text map in stable genre order,
// so a fixed seed picks the same template regardless of map iteration.
func templateSet(texts map[string]string) ([]Template, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no templates defined")
	}
	genres := make([]string, 0, len(texts))
	for g := range texts {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	out := make([]Template, 0, len(genres))
	for _, g := range genres {
		t, err := NewTemplate(g, texts[g])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Seeded embeds a random sample of vocabulary words in a random genre template.
type Seeded struct {
	rng       *rand.Rand
	words     []string
	count     int
	templates []Template
}

// NewSeeded returns a Seeded strategy drawing count words per prompt from words.
// A nil texts map selects the built-in templates.
func NewSeeded(rng *rand.Rand, words []string, count int, texts map[string]string) (*Seeded, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("seeded strategy needs a non-empty vocabulary")
	}
	if count <= 0 {
		return nil, fmt.Errorf("seeded strategy needs a positive sample size, got %d", count)
	}
	if texts == nil {
		texts = seededTemplates
	}
	tpls, err := templateSet(texts)
	if err != nil {
		return nil, err
	}
	return &Seeded{rng: rng, words: words, count: count, templates: tpls}, nil
}

// Produce implements Strategy.
func (s *Seeded) Produce() types.PromptUnit {
	tpl := s.templates[s.rng.IntN(len(s.templates))]
	seeds := sample(s.rng, s.words, s.count)
	return types.PromptUnit{
		Prompt: tpl.Render(strings.Join(seeds, ", ")),
		Genre:  tpl.Genre,
		Seeds:  seeds,
	}
}

func (s *Seeded) Name() string     { return "seed_words" }
func (s *Seeded) IDPrefix() string { return "story" }

// sample draws k distinct elements of words (k is capped at len(words))
// using a partial Fisher-Yates shuffle over a sparse index map, so large
// vocabularies are never copied.
func sample(rng *rand.Rand, words []string, k int) []string {
	n := len(words)
	if k > n {
		k = n
	}
	swapped := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	out := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(n-i)
		vi, vj := at(i), at(j)
		swapped[i], swapped[j] = vj, vi
		out = append(out, words[vj])
	}
	return out
}

// General picks uniformly among self-contained genre templates.
type General struct {
	rng       *rand.Rand
	templates []Template
}

// NewGeneral returns a General strategy. A nil texts map selects the built-in templates.
func NewGeneral(rng *rand.Rand, texts map[string]string) (*General, error) {
	if texts == nil {
		texts = generalTemplates
	}
	tpls, err := templateSet(texts)
	if err != nil {
		return nil, err
	}
	return &General{rng: rng, templates: tpls}, nil
}

// Produce implements Strategy.
func (g *General) Produce() types.PromptUnit {
	tpl := g.templates[g.rng.IntN(len(g.templates))]
	return types.PromptUnit{Prompt: tpl.Render(""), Genre: tpl.Genre}
}

func (g *General) Name() string     { return "general_prompts" }
func (g *General) IDPrefix() string { return "story" }

// Dynamic composes a prompt from five independently sampled axes.
type Dynamic struct {
	rng *rand.Rand
}

// NewDynamic returns a Dynamic strategy.
func NewDynamic(rng *rand.Rand) *Dynamic {
	return &Dynamic{rng: rng}
}

// Produce implements Strategy. The genre label is derived from the content
// and subject axes only: "<first word of content>_<subject with underscores>".
func (d *Dynamic) Produce() types.PromptUnit {
	style := pick(d.rng, textStyles)
	content := pick(d.rng, contentTypes)
	subject := pick(d.rng, subjectAreas)
	approach := pick(d.rng, approaches)
	scope := pick(d.rng, scopeModifiers)

	prompt := fmt.Sprintf("%s %s %s related to %s, %s. Write naturally and let the content develop organically.",
		scope, style, content, subject, approach)
	return types.PromptUnit{Prompt: prompt, Genre: DynamicGenre(content, subject)}
}

func (d *Dynamic) Name() string     { return "dynamic_prompts" }
func (d *Dynamic) IDPrefix() string { return "dynamic" }

// DynamicGenre derives the genre label for a content/subject pair.
func DynamicGenre(content, subject string) string {
	first, _, _ := strings.Cut(content, " ")
	return first + "_" + strings.ReplaceAll(subject, " ", "_")
}

// Spoken asks for conversational text about a title drawn from a list.
type Spoken struct {
	rng    *rand.Rand
	titles []string
}

// NewSpoken returns a Spoken strategy over titles.
func NewSpoken(rng *rand.Rand, titles []string) (*Spoken, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("spoken strategy needs a non-empty title list")
	}
	return &Spoken{rng: rng, titles: titles}, nil
}

// Produce implements Strategy.
func (s *Spoken) Produce() types.PromptUnit {
	title := pick(s.rng, s.titles)
	scenario := fmt.Sprintf(pick(s.rng, spokenScenarios), title)
	instruction := pick(s.rng, spokenInstructions)
	return types.PromptUnit{
		Prompt: scenario + " " + instruction + " Write in a way that feels like spoken conversation.",
		Genre:  SpokenGenre(title),
	}
}

func (s *Spoken) Name() string     { return "spoken_movie_discussion" }
func (s *Spoken) IDPrefix() string { return "spoken" }

// SpokenGenre derives the genre label for a title.
func SpokenGenre(title string) string {
	return "spoken_" + strings.ToLower(strings.ReplaceAll(title, " ", "_"))
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}
