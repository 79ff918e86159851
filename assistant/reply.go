package assistant

import (
	"context"
	"fmt"

	"github.com/fabfab/study-agent/llm"
)

// Reply answers query using contextText, the excerpts picked by retrieval.
// It always returns something the user can read.
func (a *Assembler) Reply(ctx context.Context, query, contextText string) string {
	if a.client == nil {
		return offlineReply(query, contextText)
	}

	res := a.complete(ctx, llm.Request{
		System:      chatSystemPrompt(contextText),
		User:        query,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})

	switch res.Status {
	case llm.StatusSuccess:
		return res.Text
	case llm.StatusQuotaExceeded:
		return quotaReply(query, contextText)
	default:
		return failureReply(contextText)
	}
}

func chatSystemPrompt(contextText string) string {
	if contextText == "" {
		return "You are a helpful AI tutor assistant. Answer educational questions to the best of your ability.\n\n"
	}
	return "You are a helpful AI tutor assistant. Use the provided context from educational materials to answer questions. " +
		"Always cite page numbers when referencing the material.\n\n" +
		"Context from uploaded materials:\n" + contextText
}

func echo(query string) string {
	return fmt.Sprintf("I understand you're asking about: \"%s\"\n\n", query)
}

func offlineReply(query, contextText string) string {
	if contextText == "" {
		return echo(query) +
			"I'd be happy to help, but I need access to your study materials first. " +
			"Please upload some PDFs and add them to this chat context for me to provide relevant information.\n\n" +
			"Note: AI-powered responses require a valid OpenRouter API key."
	}
	return echo(query) +
		"Based on the uploaded materials, here are some relevant excerpts:\n\n" + contextText + "\n\n" +
		"Note: AI-powered responses are not available without a valid OpenRouter API key. " +
		"The above content is directly from your uploaded materials."
}

func quotaReply(query, contextText string) string {
	out := echo(query) + "**OpenRouter quota exceeded** - AI features are temporarily unavailable.\n\n"
	if contextText == "" {
		return out + "Please upload study materials (PDFs) to get context-specific help even without AI features."
	}
	return out +
		"However, I can still help you with information from your uploaded materials:\n\n" + contextText + "\n\n" +
		"**Study Tip**: Review the above content carefully and try to understand the key concepts. " +
		"You can also ask more specific questions about the material."
}

func failureReply(contextText string) string {
	if contextText == "" {
		contextText = "Please upload study materials to get context-specific help."
	}
	return "I encountered an issue with the AI service. However, I can still help you with the information from your materials:\n\n" + contextText
}
