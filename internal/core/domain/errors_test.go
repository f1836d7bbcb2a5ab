package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrNoDocuments", ErrNoDocuments},
		{"ErrIndexEmpty", ErrIndexEmpty},
		{"ErrIngestion", ErrIngestion},
		{"ErrRouting", ErrRouting},
		{"ErrRetrieval", ErrRetrieval},
		{"ErrSynthesis", ErrSynthesis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_AreDistinct(t *testing.T) {
	pipeline := []error{ErrIngestion, ErrRouting, ErrRetrieval, ErrSynthesis}
	for i, a := range pipeline {
		for j, b := range pipeline {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"ingestion", ErrIngestion, KindIngestion},
		{"wrapped routing", fmt.Errorf("%w: model down", ErrRouting), KindRouting},
		{"wrapped retrieval", fmt.Errorf("retrieve: %w", fmt.Errorf("%w: boom", ErrRetrieval)), KindRetrieval},
		{"synthesis", fmt.Errorf("%w: empty answer", ErrSynthesis), KindSynthesis},
		{"unrelated", errors.New("disk full"), ""},
		{"invalid input only", ErrInvalidInput, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestErrorKind_DoubleWrapKeepsOuterKind(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrRouting, ErrInvalidInput)

	assert.Equal(t, KindRouting, ErrorKind(err))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
