package services

import (
	"math/rand/v2"
	"slices"
)

const promptSuffix = "\n\nPlease provide just the joke text without any additional commentary or explanation."

// categories keeps the listing order stable; prompts maps each one to its template.
var categories = []string{"general", "programming", "dad-jokes", "puns", "clean"}

var prompts = map[string]string{
	"general": `Generate a clean, family-friendly joke that would be appropriate for all audiences.
The joke should be clever, witty, and make people smile. Avoid any offensive content,
controversial topics, or inappropriate language. Keep it light-hearted and fun.` + promptSuffix,

	"programming": `Generate a programming or computer science related joke that developers would appreciate.
The joke can reference coding concepts, programming languages, software development practices,
debugging, or tech culture. Make it clever and relatable to people in the tech industry.
Keep it clean and professional.` + promptSuffix,

	"dad-jokes": `Generate a classic dad joke - the kind that makes people groan and laugh at the same time.
It should be a simple, punny, wholesome joke with a predictable but amusing punchline.
Think of the type of joke a father might tell at a family dinner that gets eye rolls
but secret smiles. Keep it clean and family-friendly.` + promptSuffix,

	"puns": `Generate a clever pun-based joke that plays with words, double meanings, or similar sounds.
The humor should come from wordplay, clever linguistic twists, or unexpected word associations.
Make it witty and clever, the kind that makes people appreciate the creativity of language.
Keep it clean and appropriate for all audiences.` + promptSuffix,

	"clean": `Generate a wholesome, clean joke that is completely appropriate for children and families.
Avoid any adult themes, innuendo, or potentially offensive content. The joke should be
innocent, sweet, and the kind you'd feel comfortable sharing with anyone.
Focus on simple, cheerful humor that brings joy.` + promptSuffix,
}

// PromptCatalog is a stateless lookup of category prompts.
type PromptCatalog struct {
	pick func(n int) int
}

func NewPromptCatalog() *PromptCatalog {
	return &PromptCatalog{pick: rand.IntN}
}

// Categories returns a copy of the fixed category list.
func (c *PromptCatalog) Categories() []string {
	return slices.Clone(categories)
}

func (c *PromptCatalog) IsValid(category string) bool {
	_, ok := prompts[category]
	return ok
}

func (c *PromptCatalog) RandomCategory() string {
	return categories[c.pick(len(categories))]
}

// PromptFor returns the template for category, picking one at random when empty.
func (c *PromptCatalog) PromptFor(category string) (string, error) {
	if category == "" {
		category = c.RandomCategory()
	}
	p, ok := prompts[category]
	if !ok {
		return "", &InvalidCategoryError{Category: category, Valid: c.Categories()}
	}
	return p, nil
}
