package analyzer

import "fmt"

func analysisPrompt(title, content string) string {
	return fmt.Sprintf(`You are an information analysis agent. Analyze the following article.

# Title
%s

# Body
%s

# Instructions
Respond with JSON only (no surrounding prose):

{
  "summary": "concise summary of the article, 200-300 characters",
  "importance_score": integer 0-100 weighing novelty, impact and urgency (50 = average, 80+ = very important, 30 or below = minor),
  "entities": [
    {"type": "person", "name": "..."},
    {"type": "organization", "name": "..."},
    {"type": "technology", "name": "..."},
    {"type": "event", "name": "..."}
  ],
  "sentiment": "positive" or "neutral" or "negative",
  "tags": ["category1", "category2"] (at most 5)
}

Importance scale:
- 90-100: market-moving news (major bankruptcy, regulatory change, breakthrough technology)
- 70-89: significant industry impact (large M&A, key personnel change, major product launch)
- 50-69: ordinary news
- 30-49: minor update
- 0-29: negligible impact
`, title, content)
}

func summaryPrompt(content string) string {
	return fmt.Sprintf(`Summarize the following text.
Focus on the key facts, insights, and implications.
Keep it concise (around 200-300 characters).

Text:
%s
`, content)
}
