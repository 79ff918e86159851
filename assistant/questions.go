package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fabfab/study-agent/llm"
	"github.com/fabfab/study-agent/models"
)

// Mode records which path produced a set of questions.
type Mode string

const (
	ModeSample      Mode = "sample"
	ModeAI          Mode = "ai"
	ModePlaceholder Mode = "placeholder"
	ModeContent     Mode = "content"
)

const (
	maxPromptChunks = 5
	questionPreview = 100
)

type QuizRequest struct {
	Type   models.QuizType
	Count  int
	Chunks []models.Chunk
}

type Generation struct {
	Questions []models.Question
	Mode      Mode
	Message   string
	Note      string
}

// GenerateQuestions asks the completion client for Count questions over the
// first chunks. Without a client it returns a fixed sample quiz; on quota
// exhaustion it builds one question per chunk; on any other failure it
// returns a single placeholder question.
func (a *Assembler) GenerateQuestions(ctx context.Context, req QuizRequest) Generation {
	if a.client == nil {
		return Generation{
			Questions: sampleQuestions(req.Type),
			Mode:      ModeSample,
			Message:   "Sample quiz generated (OpenRouter API key required for AI-generated content)",
		}
	}

	res := a.complete(ctx, llm.Request{
		User:        quizPrompt(req),
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})

	switch res.Status {
	case llm.StatusSuccess:
		questions, err := parseQuestions(res.Text, req.Type)
		if err != nil {
			a.logger.Warn("unusable quiz completion", "error", err)
			return placeholderGeneration(req.Type, "Quiz generated successfully")
		}
		if req.Count > 0 && len(questions) > req.Count {
			questions = questions[:req.Count]
		}
		return Generation{Questions: questions, Mode: ModeAI, Message: "Quiz generated successfully"}
	case llm.StatusQuotaExceeded:
		return Generation{
			Questions: contentQuestions(req),
			Mode:      ModeContent,
			Message:   "Quiz generated from PDF content (OpenRouter quota exceeded)",
			Note:      "AI-powered question generation is temporarily unavailable due to quota limits. Questions are based on your PDF content.",
		}
	default:
		return placeholderGeneration(req.Type, "Quiz generated with a placeholder question (AI service unavailable)")
	}
}

func quizPrompt(req QuizRequest) string {
	chunks := req.Chunks
	if len(chunks) > maxPromptChunks {
		chunks = chunks[:maxPromptChunks]
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following educational content, generate %d %s questions:\n\n", req.Count, req.Type)
	b.WriteString("Content:\n")
	b.WriteString(strings.Join(texts, "\n\n"))
	b.WriteString(`

Requirements:
- For MCQ: Provide 4 options (A, B, C, D) with one correct answer
- For SAQ: Short answer questions requiring 2-3 sentences
- For LAQ: Long answer questions requiring detailed explanations
- Include explanations for each answer
- Reference page numbers when possible

Format the response as JSON with this structure:
{
  "questions": [
    {
      "question": "Question text",
      "type": "`)
	b.WriteString(string(req.Type))
	b.WriteString(`",
      "options": ["Option A", "Option B", "Option C", "Option D"], // Only for MCQ
      "correctAnswer": "Correct answer text",
      "explanation": "Detailed explanation",
      "pageReference": 1
    }
  ]
}`)
	return b.String()
}

type generatedQuiz struct {
	Questions []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Question      string   `json:"question"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	PageReference pageRef  `json:"pageReference"`
}

// pageRef accepts 3, 3.0 and "3".
type pageRef int

func (p *pageRef) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = pageRef(int(f))
	return nil
}

// parseQuestions decodes a completion into questions. A surrounding markdown
// code fence or prose around the JSON object is tolerated.
func parseQuestions(text string, quizType models.QuizType) ([]models.Question, error) {
	var quiz generatedQuiz
	if err := json.Unmarshal([]byte(stripFence(text)), &quiz); err != nil {
		start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("decode quiz json: %w", err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &quiz); err != nil {
			return nil, fmt.Errorf("decode quiz json: %w", err)
		}
	}

	out := make([]models.Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		body := strings.TrimSpace(q.Question)
		if body == "" {
			body = strings.TrimSpace(q.Text)
		}
		if body == "" {
			continue
		}
		question := models.Question{
			Text:          body,
			Type:          quizType,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			PageReference: int(q.PageReference),
		}
		if quizType == models.QuizTypeMCQ {
			question.Options = q.Options
		}
		out = append(out, question)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("completion contained no questions")
	}
	return out, nil
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.Index(text, "\n"); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func mcqOptions(quizType models.QuizType, options ...string) []string {
	if quizType != models.QuizTypeMCQ {
		return nil
	}
	return options
}

func pick(quizType models.QuizType, mcq, other string) string {
	if quizType == models.QuizTypeMCQ {
		return mcq
	}
	return other
}

func sampleQuestions(quizType models.QuizType) []models.Question {
	return []models.Question{
		{
			Text:          "What is the main topic discussed in this material?",
			Type:          quizType,
			Options:       mcqOptions(quizType, "Physics concepts", "Mathematical formulas", "Scientific methods", "All of the above"),
			CorrectAnswer: pick(quizType, "All of the above", "The material discusses fundamental physics concepts, mathematical formulas, and scientific methods."),
			Explanation:   "This is a sample question. Please add your OpenRouter API key to enable AI-generated questions.",
			PageReference: 1,
		},
		{
			Text:          "Which of the following is a fundamental unit in physics?",
			Type:          quizType,
			Options:       mcqOptions(quizType, "Meter", "Kilometer", "Centimeter", "Millimeter"),
			CorrectAnswer: pick(quizType, "Meter", "Meter is the fundamental unit of length in the SI system."),
			Explanation:   "The meter is the base unit of length in the International System of Units (SI).",
			PageReference: 2,
		},
	}
}

func placeholderGeneration(quizType models.QuizType, message string) Generation {
	return Generation{
		Questions: []models.Question{{
			Text:          "What is the main topic discussed in this content?",
			Type:          quizType,
			Options:       mcqOptions(quizType, "Topic A", "Topic B", "Topic C", "Topic D"),
			CorrectAnswer: "Please refer to the content",
			Explanation:   "This question tests understanding of the main concepts.",
			PageReference: 1,
		}},
		Mode:    ModePlaceholder,
		Message: message,
	}
}

// contentQuestions builds one page-grounded question per chunk, up to Count.
func contentQuestions(req QuizRequest) []models.Question {
	chunks := req.Chunks
	if req.Count >= 0 && len(chunks) > req.Count {
		chunks = chunks[:req.Count]
	}

	if len(chunks) == 0 {
		return []models.Question{{
			Text:          "What is the main subject of this educational material?",
			Type:          req.Type,
			Options:       mcqOptions(req.Type, "Science", "Mathematics", "Literature", "General Knowledge"),
			CorrectAnswer: pick(req.Type, "Science", "Please review the content to identify the main subject."),
			Explanation:   "This is a content-based question. AI quota exceeded - questions generated from PDF content.",
			PageReference: 1,
		}}
	}

	out := make([]models.Question, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, models.Question{
			Text:          fmt.Sprintf("Based on page %d, what is discussed in the following content: \"%s...\"?", c.PageNumber, c.Preview(questionPreview)),
			Type:          req.Type,
			Options:       mcqOptions(req.Type, "Fundamental concepts", "Mathematical formulas", "Practical applications", "All of the above"),
			CorrectAnswer: pick(req.Type, "All of the above", "Please refer to the specific content on this page for detailed information."),
			Explanation:   fmt.Sprintf("This question is based on content from page %d. Review the material carefully to understand the concepts.", c.PageNumber),
			PageReference: c.PageNumber,
		})
	}
	return out
}

