package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vantage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vantage-cli/internal/logger"
)

// Ensure SynthesizerService implements the interface.
var _ driving.Synthesizer = (*SynthesizerService)(nil)

// NotMentionedAnswer is returned without a model call when nothing was retrieved.
const NotMentionedAnswer = "This is not mentioned in the provided documents."

// excerptLength is the number of characters kept in a citation excerpt.
const excerptLength = 200

// SynthesizerService generates grounded answers from retrieved matches.
type SynthesizerService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSynthesizerService creates a new synthesizer service.
func NewSynthesizerService(llm driven.LLMService, prompts driven.PromptStore) *SynthesizerService {
	return &SynthesizerService{
		llm:     llm,
		prompts: prompts,
	}
}

// Synthesize answers question from matches only. Citations are built from the
// matches themselves, never from the model's text, so they cannot point
// outside the retrieved set.
func (s *SynthesizerService) Synthesize(
	ctx context.Context,
	question string,
	decision domain.RoutingDecision,
	matches []domain.RetrievedMatch,
) (domain.Synthesis, error) {
	logger.Section("Synthesis")

	if len(matches) == 0 {
		logger.Debug("No matches, skipping model call")
		return domain.Synthesis{Answer: NotMentionedAnswer, Citations: []domain.Citation{}}, nil
	}
	if s.llm == nil {
		return domain.Synthesis{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, domain.ErrLLMUnavailable)
	}

	messages, err := s.buildMessages(question, decision, matches)
	if err != nil {
		return domain.Synthesis{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: 0})
	if err != nil {
		logger.Warn("Synthesis call failed: %v", err)
		return domain.Synthesis{}, fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return domain.Synthesis{}, fmt.Errorf("%w: model returned an empty answer", domain.ErrSynthesis)
	}

	citations := BuildCitations(matches)
	logger.Info("Answer: %d characters, %d citations", len(answer), len(citations))

	return domain.Synthesis{Answer: answer, Citations: citations}, nil
}

func (s *SynthesizerService) buildMessages(
	question string,
	decision domain.RoutingDecision,
	matches []domain.RetrievedMatch,
) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptSynthesisSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	if decision.Route.IsComparison() {
		comparison, err := s.prompts.Load(driven.PromptComparison)
		if err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
		system += "\n\n" + comparison
	}

	user, err := s.prompts.Load(driven.PromptSynthesisUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, FormatContext(matches), question)},
	}, nil
}

// FormatContext renders matches as labelled blocks in rank order.
func FormatContext(matches []domain.RetrievedMatch) string {
	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("[%s, Page %d]\n%s\n", m.Chunk.DocumentID.Label(), m.Chunk.Page, strings.TrimSpace(m.Chunk.Content))
	}
	return strings.Join(blocks, "\n---\n")
}

// BuildCitations returns one citation per (document, page) in rank order.
func BuildCitations(matches []domain.RetrievedMatch) []domain.Citation {
	type pageKey struct {
		doc  domain.DocumentID
		page int
	}

	seen := make(map[pageKey]bool, len(matches))
	citations := make([]domain.Citation, 0, len(matches))
	for _, m := range matches {
		key := pageKey{m.Chunk.DocumentID, m.Chunk.Page}
		if seen[key] {
			continue
		}
		seen[key] = true

		citations = append(citations, domain.Citation{
			Document: m.Chunk.DocumentID,
			Title:    m.Chunk.Title,
			Page:     m.Chunk.Page,
			Excerpt:  excerpt(m.Chunk.Content),
		})
	}
	return citations
}

// excerpt keeps the first excerptLength characters, marking truncation.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= excerptLength {
		return content
	}
	return string([]rune(content)[:excerptLength]) + "..."
}
