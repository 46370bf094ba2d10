package agent

import "fmt"

const (
	analystSystemPrompt    = "You are an expert analyst providing insights on topics."
	summarizerSystemPrompt = "You are an expert at summarizing content accurately and concisely."
	extractorSystemPrompt  = "You are an expert at entity extraction and analysis."
	questionsSystemPrompt  = "You are an expert at generating insightful questions for further research."
)

func analyzeTopicPrompt(topic string, extra map[string]any) string {
	context := ""
	if len(extra) > 0 {
		context = fmt.Sprintf("Additional Context: %v\n", extra)
	}
	return fmt.Sprintf(`Analyze the following topic and provide key insights:
Topic: %s
%s
Please provide:
1. Main themes
2. Key stakeholders
3. Potential impact areas
4. Related topics
5. Current trends`, topic, context)
}

func summarizePrompt(content string, maxLength int) string {
	lengthGuidance := "concisely"
	if maxLength > 0 {
		lengthGuidance = fmt.Sprintf("in approximately %d words", maxLength)
	}
	return fmt.Sprintf("Please summarize the following content %s, capturing the key points and main message:\n\n%s", lengthGuidance, content)
}

func extractEntitiesPrompt(content string) string {
	return fmt.Sprintf(`Please analyze the following content and extract key entities in the following categories:
- People
- Organizations
- Locations
- Technologies
- Concepts
- Dates

Format the response as a JSON object with a single "entities" key holding an array where each item has 'entity', 'category', and 'relevance' (0-1) fields.

Content:
%s`, content)
}

func generateQuestionsPrompt(content string, numQuestions int) string {
	return fmt.Sprintf(`Based on the following content, generate %d insightful follow-up questions that would help deepen understanding or explore related areas:

Content:
%s`, numQuestions, content)
}
