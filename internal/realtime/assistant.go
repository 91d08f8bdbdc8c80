package realtime

import (
	"context"
	"log/slog"
	"strings"

	"collab-service/internal/models"
	"collab-service/internal/repository"
)

const assistantSystemPrompt = "You are a helpful AI assistant in a chat channel. Be conversational and helpful."

// How many persisted messages are gathered as conversation context for a
// mention, including the triggering message itself.
const assistantContextSize = 10

// Completer is the external text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Assistant answers @ai mentions. Respond runs as a detached hub task: its
// only observable effects are one broadcast message on success or one error
// frame to the triggering connection on failure.
type Assistant struct {
	store     repository.MessageRepository
	completer Completer
}

func NewAssistant(store repository.MessageRepository, completer Completer) *Assistant {
	return &Assistant{store: store, completer: completer}
}

// Respond gathers recent conversation history, asks the completion service,
// persists the reply under the synthetic assistant sender and broadcasts it.
// A failing completion or store never takes down anything beyond this task;
// the requester alone gets an error frame.
func (a *Assistant) Respond(ctx context.Context, hub *Hub, topic Topic, conversationID, query, requesterConnID string) {
	prompt := a.buildPrompt(ctx, conversationID, query)

	reply, err := a.completer.Complete(ctx, prompt, assistantSystemPrompt)
	if err != nil {
		slog.Error("Assistant completion failed", "conversationID", conversationID, "error", err)
		hub.SendToConnection(requesterConnID, NewErrorFrame("AI service error: "+err.Error()))
		return
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       models.AssistantSenderID,
		SenderName:     models.AssistantSenderName,
		Content:        "🤖 " + reply,
		IsAI:           true,
	}
	if err := a.store.Create(ctx, msg); err != nil {
		slog.Error("Failed to persist assistant reply", "conversationID", conversationID, "error", err)
		hub.SendToConnection(requesterConnID, NewErrorFrame("AI service error: "+err.Error()))
		return
	}

	hub.BroadcastToTopic(topic, NewMessageFrame(msg), "")
}

// buildPrompt prepends recent history, newest last, excluding the triggering
// mention itself. History fetch failures degrade to a context-free prompt.
func (a *Assistant) buildPrompt(ctx context.Context, conversationID, query string) string {
	var contextLines []string
	recent, err := a.store.FindRecent(ctx, conversationID, assistantContextSize)
	if err != nil {
		slog.Warn("Failed to load assistant context", "conversationID", conversationID, "error", err)
	} else {
		// recent is newest-first; recent[0] is the mention that triggered us
		for i := len(recent) - 1; i >= 1; i-- {
			contextLines = append(contextLines, recent[i].Content)
		}
	}

	return "Previous conversation:\n" +
		strings.Join(contextLines, "\n") +
		"\n\nUser question: " + query +
		"\n\nProvide a helpful response based on the conversation context."
}
