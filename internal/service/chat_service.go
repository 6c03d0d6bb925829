package service

import (
	"context"
	"log/slog"

	"socialvim/internal/middleware"
	"socialvim/internal/models"
	"socialvim/internal/observability"
	"socialvim/internal/repository"
	"socialvim/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ChatService provides direct-message conversations between two users.
type ChatService struct {
	users    *UserService
	chatRepo repository.ChatRepository
}

// NewChatService returns a new ChatService.
func NewChatService(users *UserService, chatRepo repository.ChatRepository) *ChatService {
	return &ChatService{users: users, chatRepo: chatRepo}
}

// GetOrCreateConversation returns the one conversation between two user ids.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	if userA == userB {
		return nil, models.NewValidationError("a conversation needs two different users")
	}
	return s.chatRepo.GetOrCreateConversation(ctx, userA, userB)
}

// OpenDM gets or creates the conversation between two existing handles.
func (s *ChatService) OpenDM(ctx context.Context, aHandle, bHandle string) (view models.ConversationView, err error) {
	if err = validation.CheckHandle(aHandle); err != nil {
		return models.ConversationView{}, err
	}
	if err = validation.CheckHandle(bHandle); err != nil {
		return models.ConversationView{}, err
	}
	if aHandle == bHandle {
		return models.ConversationView{}, models.NewValidationError("cannot open a conversation with yourself")
	}

	ctx, span := observability.StartSpan(ctx, "ChatService.OpenDM")
	defer func() { observability.EndSpan(span, err) }()

	userA, err := s.users.Lookup(ctx, aHandle)
	if err != nil {
		return models.ConversationView{}, err
	}
	userB, err := s.users.Lookup(ctx, bHandle)
	if err != nil {
		return models.ConversationView{}, err
	}

	conv, err := s.GetOrCreateConversation(ctx, userA.ID, userB.ID)
	if err != nil {
		return models.ConversationView{}, err
	}
	// Participants are echoed in request order, not storage order.
	view = models.NewConversationView(conv)
	view.ParticipantHandles = []string{userA.Username, userB.Username}
	return view, nil
}

// ListConversations lists handle's conversations, registering the handle if new.
func (s *ChatService) ListConversations(ctx context.Context, handle string) ([]models.ConversationView, error) {
	user, err := s.users.ResolveOrRegister(ctx, handle)
	if err != nil {
		return nil, err
	}
	convs, err := s.chatRepo.GetUserConversations(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	views := make([]models.ConversationView, 0, len(convs))
	for _, c := range convs {
		views = append(views, models.NewConversationView(c))
	}
	return views, nil
}

func (s *ChatService) ListMessages(ctx context.Context, conversationID uint) ([]models.MessageView, error) {
	msgs, err := s.chatRepo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, models.NewMessageView(m))
	}
	return views, nil
}

// SendMessage appends a message from an existing sender to an existing conversation.
func (s *ChatService) SendMessage(ctx context.Context, conversationID uint, senderHandle, content string) (view models.MessageView, err error) {
	ctx, span := observability.StartSpan(ctx, "ChatService.SendMessage", attribute.Int64("conversation.id", int64(conversationID)))
	defer func() { observability.EndSpan(span, err) }()

	sender, err := s.users.Lookup(ctx, senderHandle)
	if err != nil {
		return models.MessageView{}, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       sender.ID,
		SenderHandle:   sender.Username,
		Content:        content,
	}
	if err = s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return models.MessageView{}, err
	}

	observability.MessagesSent.Inc()
	middleware.Logger.DebugContext(ctx, "message sent",
		slog.Uint64("conversation_id", uint64(conversationID)),
		slog.Uint64("message_id", uint64(msg.ID)),
	)
	return models.NewMessageView(msg), nil
}
