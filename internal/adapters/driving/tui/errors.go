package tui

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("tui: analysis service is required")

// ErrNoQuestions is returned when the run has nothing to ask.
var ErrNoQuestions = errors.New("tui: no questions to run")
