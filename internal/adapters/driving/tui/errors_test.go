package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingAnalysisService, ErrNoQuestions)
	assert.Contains(t, ErrMissingAnalysisService.Error(), "tui:")
	assert.Contains(t, ErrNoQuestions.Error(), "tui:")
}
