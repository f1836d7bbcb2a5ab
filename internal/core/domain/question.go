package domain

// AdHocQuestionID is the result key for a question passed on the command line.
const AdHocQuestionID = "ADHOC"

// Question is a predefined or ad hoc question to analyse.
type Question struct {
	ID    string
	Title string
	Text  string
}

// DefaultQuestions returns the predefined analysis questions in run order.
//
//nolint:lll // Question text is intentionally long and should not be wrapped.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:    "Q1",
			Title: "Forecasted Equity Themes",
			Text: `According to J.P. Morgan's Outlook 2025 (the forecast document):
1. Which equity market themes were expected to perform well in 2025?
2. Which specific stocks or groups of stocks (e.g., Apple, Microsoft, Magnificent 7, AI-related equities) were highlighted as investment opportunities or focal points?

Please provide specific names and details with page citations.`,
		},
		{
			ID:    "Q2",
			Title: "Mid-Year Reality Check",
			Text: `According to J.P. Morgan's Mid-Year Outlook 2025:
1. Which forecasted themes from the 2025 Outlook played out as expected?
2. Which themes or expectations underperformed or disappointed?

Please be specific about what was expected vs what actually happened, with page citations.`,
		},
		{
			ID:    "Q3",
			Title: "Stock-Level Comparison",
			Text: `Identify at least two named stocks (such as Apple, Microsoft, NVIDIA, or other major companies) and for each:
1. What was implied or stated about them in the 2025 forecast (Outlook 2025)?
2. How is their performance or outlook described at mid-year 2025?

Focus on specific company names mentioned in both documents. Provide citations for each claim.`,
		},
		{
			ID:    "Q4",
			Title: "Valuation and Risk",
			Text: `Answer the following:
1. What valuation concerns or risk factors were highlighted at the start of 2025 in the Outlook 2025 document?
2. Which of those specific risks materialized by mid-year 2025, according to the Mid-Year Outlook?
3. Were there any new risks that emerged that weren't anticipated in the original forecast?

Provide specific details and citations from both documents.`,
		},
		{
			ID:    "Q5",
			Title: "Structured Comparison Table",
			Text: `Create a comprehensive comparison of stocks and investment themes between the 2025 Forecast and Mid-Year Reality.

For each stock or theme you can identify in both documents, provide:
- Stock/Theme name
- What the 2025 Forecast said (predictions, expectations)
- What the Mid-Year 2025 shows (actual results, current outlook)
- Whether the forecast was supported (Yes/No/Partially)
- Citations from both documents

Focus on: individual stocks (Apple, Microsoft, NVIDIA, etc.), the Magnificent 7, AI investments, sector allocations, and any other major themes discussed in both documents.`,
		},
	}
}

// FindQuestion returns the predefined question with the given ID.
func FindQuestion(id string) (Question, bool) {
	for _, q := range DefaultQuestions() {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
