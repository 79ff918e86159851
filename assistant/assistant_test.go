package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/study-agent/llm"
	"github.com/fabfab/study-agent/models"
)

type stubClient struct {
	result llm.Result
	got    []llm.Request
	wait   bool
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) llm.Result {
	s.got = append(s.got, req)
	if s.wait {
		<-ctx.Done()
		return llm.Failed(ctx.Err())
	}
	return s.result
}

const excerpt = "Page 2: Velocity is the rate of change of displacement...\n\n"

func TestReplyWithoutCredential(t *testing.T) {
	a := NewAssembler(nil, 0, nil)
	assert.False(t, a.HasCredential())

	withContext := a.Reply(context.Background(), "what is velocity", excerpt)
	assert.True(t, strings.HasPrefix(withContext, "I understand you're asking about: \"what is velocity\"\n\n"))
	assert.Contains(t, withContext, excerpt)
	assert.Contains(t, withContext, "AI-powered responses are not available without a valid OpenRouter API key")

	empty := a.Reply(context.Background(), "what is velocity", "")
	assert.Contains(t, empty, "I'd be happy to help, but I need access to your study materials first.")
	assert.Contains(t, empty, "Note: AI-powered responses require a valid OpenRouter API key.")
}

func TestReplySuccessUsesSystemPrompt(t *testing.T) {
	client := &stubClient{result: llm.Success("Velocity is displacement over time (page 2).")}
	a := NewAssembler(client, time.Second, nil)
	assert.True(t, a.HasCredential())

	reply := a.Reply(context.Background(), "what is velocity", excerpt)
	assert.Equal(t, "Velocity is displacement over time (page 2).", reply)

	require.Len(t, client.got, 1)
	req := client.got[0]
	assert.Equal(t, "what is velocity", req.User)
	assert.Contains(t, req.System, "Always cite page numbers")
	assert.Contains(t, req.System, "Context from uploaded materials:\n"+excerpt)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Equal(t, 1000, req.MaxTokens)

	_ = a.Reply(context.Background(), "hello", "")
	assert.NotContains(t, client.got[1].System, "cite page numbers")
	assert.Contains(t, client.got[1].System, "Answer educational questions")
}

func TestReplyQuotaExceeded(t *testing.T) {
	a := NewAssembler(&stubClient{result: llm.QuotaExceeded(errors.New("429"))}, time.Second, nil)

	reply := a.Reply(context.Background(), "forces", excerpt)
	assert.Contains(t, reply, "**OpenRouter quota exceeded**")
	assert.Contains(t, reply, excerpt)
	assert.Contains(t, reply, "**Study Tip**")

	reply = a.Reply(context.Background(), "forces", "")
	assert.Contains(t, reply, "Please upload study materials (PDFs) to get context-specific help even without AI features.")
}

func TestReplyOtherFailure(t *testing.T) {
	a := NewAssembler(&stubClient{result: llm.Failed(errors.New("dial tcp: refused"))}, time.Second, nil)

	reply := a.Reply(context.Background(), "forces", excerpt)
	assert.True(t, strings.HasPrefix(reply, "I encountered an issue with the AI service."))
	assert.True(t, strings.HasSuffix(reply, excerpt))

	reply = a.Reply(context.Background(), "forces", "")
	assert.True(t, strings.HasSuffix(reply, "Please upload study materials to get context-specific help."))
}

func TestReplyTimeoutFallsBack(t *testing.T) {
	a := NewAssembler(&stubClient{wait: true}, 20*time.Millisecond, nil)

	reply := a.Reply(context.Background(), "forces", "")
	assert.Contains(t, reply, "I encountered an issue with the AI service.")
}

func chunks(n int) []models.Chunk {
	out := make([]models.Chunk, n)
	for i := range out {
		out[i] = models.Chunk{Text: strings.Repeat("x", 120), PageNumber: i + 1, ChunkIndex: i}
	}
	return out
}

func TestGenerateQuestionsSample(t *testing.T) {
	a := NewAssembler(nil, 0, nil)

	mcq := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeMCQ, Count: 5})
	assert.Equal(t, ModeSample, mcq.Mode)
	require.Len(t, mcq.Questions, 2)
	assert.Equal(t, "All of the above", mcq.Questions[0].CorrectAnswer)
	assert.Len(t, mcq.Questions[1].Options, 4)
	assert.Equal(t, 2, mcq.Questions[1].PageReference)

	saq := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeSAQ, Count: 5})
	assert.Nil(t, saq.Questions[0].Options)
	assert.Equal(t, "Meter is the fundamental unit of length in the SI system.", saq.Questions[1].CorrectAnswer)
}

func TestGenerateQuestionsFromCompletion(t *testing.T) {
	body := "```json\n" + `{"questions":[
		{"question":"What is velocity?","type":"MCQ","options":["A","B","C","D"],"correctAnswer":"A","explanation":"Because.","pageReference":"2"},
		{"question":"What is speed?","options":["A","B","C","D"],"correctAnswer":"B","explanation":"Because.","pageReference":3},
		{"question":"","correctAnswer":"skipped"}
	]}` + "\n```"
	client := &stubClient{result: llm.Success(body)}
	a := NewAssembler(client, time.Second, nil)

	gen := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeMCQ, Count: 5, Chunks: chunks(7)})
	assert.Equal(t, ModeAI, gen.Mode)
	require.Len(t, gen.Questions, 2)
	assert.Equal(t, "What is velocity?", gen.Questions[0].Text)
	assert.Equal(t, 2, gen.Questions[0].PageReference)
	assert.Equal(t, models.QuizTypeMCQ, gen.Questions[1].Type)

	require.Len(t, client.got, 1)
	prompt := client.got[0].User
	assert.Contains(t, prompt, "generate 5 MCQ questions")
	assert.Equal(t, 5, strings.Count(prompt, strings.Repeat("x", 120)))
	assert.Equal(t, 2000, client.got[0].MaxTokens)
	assert.Empty(t, client.got[0].System)
}

func TestGenerateQuestionsTruncatesToCount(t *testing.T) {
	body := `{"questions":[{"question":"one","correctAnswer":"a"},{"question":"two","correctAnswer":"b"}]}`
	a := NewAssembler(&stubClient{result: llm.Success(body)}, time.Second, nil)

	gen := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeSAQ, Count: 1})
	require.Len(t, gen.Questions, 1)
	assert.Nil(t, gen.Questions[0].Options)
}

func TestGenerateQuestionsUnparseable(t *testing.T) {
	for _, body := range []string{"Sorry, I cannot help with that.", `{"questions":[]}`} {
		a := NewAssembler(&stubClient{result: llm.Success(body)}, time.Second, nil)

		gen := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeMCQ, Count: 3})
		assert.Equal(t, ModePlaceholder, gen.Mode)
		require.Len(t, gen.Questions, 1)
		assert.Equal(t, "What is the main topic discussed in this content?", gen.Questions[0].Text)
		assert.Equal(t, []string{"Topic A", "Topic B", "Topic C", "Topic D"}, gen.Questions[0].Options)
	}
}

func TestGenerateQuestionsQuotaUsesChunks(t *testing.T) {
	a := NewAssembler(&stubClient{result: llm.QuotaExceeded(errors.New("429"))}, time.Second, nil)

	gen := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeMCQ, Count: 2, Chunks: chunks(4)})
	assert.Equal(t, ModeContent, gen.Mode)
	assert.NotEmpty(t, gen.Note)
	require.Len(t, gen.Questions, 2)
	q := gen.Questions[1]
	assert.Equal(t, "Based on page 2, what is discussed in the following content: \""+strings.Repeat("x", 100)+"...\"?", q.Text)
	assert.Equal(t, 2, q.PageReference)
	assert.Equal(t, "All of the above", q.CorrectAnswer)

	none := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeLAQ, Count: 2})
	require.Len(t, none.Questions, 1)
	assert.Equal(t, "What is the main subject of this educational material?", none.Questions[0].Text)
	assert.Equal(t, "Please review the content to identify the main subject.", none.Questions[0].CorrectAnswer)
	assert.Nil(t, none.Questions[0].Options)
}

func TestGenerateQuestionsOtherFailure(t *testing.T) {
	a := NewAssembler(&stubClient{result: llm.Failed(errors.New("502"))}, time.Second, nil)

	gen := a.GenerateQuestions(context.Background(), QuizRequest{Type: models.QuizTypeSAQ, Count: 5, Chunks: chunks(2)})
	assert.Equal(t, ModePlaceholder, gen.Mode)
	require.Len(t, gen.Questions, 1)
	assert.Nil(t, gen.Questions[0].Options)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence(`  {"a":1} `))
}
