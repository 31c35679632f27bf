package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptCatalog_PromptFor(t *testing.T) {
	c := NewPromptCatalog()

	for _, cat := range c.Categories() {
		p, err := c.PromptFor(cat)
		require.NoError(t, err, cat)
		assert.NotEmpty(t, p)
		assert.Contains(t, p, "Please provide just the joke text")
	}
}

func TestPromptCatalog_Invalid(t *testing.T) {
	c := NewPromptCatalog()

	_, err := c.PromptFor("nonexistent")
	require.Error(t, err)

	var catErr *InvalidCategoryError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "nonexistent", catErr.Category)
	assert.Equal(t, []string{"general", "programming", "dad-jokes", "puns", "clean"}, catErr.Valid)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.Contains(t, err.Error(), "dad-jokes")
}

func TestPromptCatalog_Random(t *testing.T) {
	c := &PromptCatalog{pick: func(n int) int { return n - 1 }}
	assert.Equal(t, "clean", c.RandomCategory())

	p, err := c.PromptFor("")
	require.NoError(t, err)
	assert.Equal(t, prompts["clean"], p)
}

func TestPromptCatalog_CategoriesIsCopy(t *testing.T) {
	c := NewPromptCatalog()
	list := c.Categories()
	list[0] = "mutated"
	assert.True(t, c.IsValid("general"))
	assert.Equal(t, "general", c.Categories()[0])
	assert.False(t, c.IsValid("mutated"))
}
