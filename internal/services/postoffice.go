package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/welldanyogia/postoffice/internal/errors"
	"github.com/welldanyogia/postoffice/internal/idgen"
	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/repository"
	"github.com/welldanyogia/postoffice/internal/validator"
)

// selfSentSuffix distinguishes the sender's copy when both parties are the
// same owner, so that the inbox and sent copies stay separate rows
const selfSentSuffix = ".sent"

// Messenger sends messages between two owners.
//
// Every send writes two copies of the message: one in the recipient's
// conversation listed in their inbox, one in the sender's conversation
// listed in their sent folder. The copies are delivered independently; a
// failure of one is reported but never rolled back.
type Messenger interface {
	// StartConversation opens a new exchange and returns its discriminator
	StartConversation(ctx context.Context, from, to, subject, body string) (string, error)

	// Reply adds a message to the exchange named by discriminator
	Reply(ctx context.Context, from, to, subject, body, discriminator string) error

	// SendMessage appends message to one conversation and bumps it in the
	// owner's folder
	SendMessage(ctx context.Context, owner, folder, conversationID string, message *models.Message) error
}

// Notifier is told about every successful folder bump
type Notifier interface {
	NotifyFolderBumped(key models.FolderKey, conversationID string)
}

// postoffice implements Messenger
type postoffice struct {
	messages repository.MessageRepository
	folders  repository.FolderRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewPostoffice creates a new Messenger. notifier may be nil.
func NewPostoffice(messages repository.MessageRepository, folders repository.FolderRepository, notifier Notifier, logger *slog.Logger) Messenger {
	return &postoffice{
		messages: messages,
		folders:  folders,
		notifier: notifier,
		logger:   logger,
	}
}

// StartConversation delivers the first message of a new exchange
func (p *postoffice) StartConversation(ctx context.Context, from, to, subject, body string) (string, error) {
	if err := validateParties(from, to); err != nil {
		return "", err
	}
	discriminator := idgen.New()
	if err := p.deliver(ctx, from, to, subject, body, discriminator); err != nil {
		return "", err
	}
	return discriminator, nil
}

// Reply delivers a message into an existing exchange
func (p *postoffice) Reply(ctx context.Context, from, to, subject, body, discriminator string) error {
	if err := validateParties(from, to); err != nil {
		return err
	}
	if err := validator.ValidateDiscriminator(discriminator); err != nil {
		return apperrors.InvalidInput("id", err.Error())
	}
	return p.deliver(ctx, from, to, subject, body, discriminator)
}

// deliver writes the recipient's copy first, then the sender's. Both are
// attempted even if the first fails.
func (p *postoffice) deliver(ctx context.Context, from, to, subject, body, discriminator string) error {
	message := models.NewMessage(idgen.New(), from, subject, body)

	inboxID := models.ConversationID(to, discriminator)
	sentDiscriminator := discriminator
	if from == to {
		sentDiscriminator += selfSentSuffix
	}
	sentID := models.ConversationID(from, sentDiscriminator)

	inboxErr := p.SendMessage(ctx, to, models.FolderInbox, inboxID, message)
	sentErr := p.SendMessage(ctx, from, models.FolderSent, sentID, message)

	switch {
	case inboxErr == nil && sentErr == nil:
		if p.logger != nil {
			p.logger.Debug("message delivered",
				slog.String("message_id", message.ID),
				slog.String("from", from),
				slog.String("to", to),
				slog.String("discriminator", discriminator))
		}
		return nil
	case inboxErr != nil && sentErr != nil:
		return fmt.Errorf("failed to deliver message %s: %w", message.ID, errors.Join(inboxErr, sentErr))
	default:
		err := errors.Join(inboxErr, sentErr)
		if p.logger != nil {
			p.logger.Warn("message partially delivered",
				slog.String("message_id", message.ID),
				slog.String("from", from),
				slog.String("to", to),
				slog.Bool("inbox_delivered", inboxErr == nil),
				slog.Bool("sent_delivered", sentErr == nil),
				slog.Any("error", err))
		}
		return fmt.Errorf("%w: message %s: %w", apperrors.ErrPartialDelivery, message.ID, err)
	}
}

// SendMessage appends the message and then bumps the conversation. The
// bump is skipped when the append fails so the index never points at a
// message that was not written.
func (p *postoffice) SendMessage(ctx context.Context, owner, folder, conversationID string, message *models.Message) error {
	if err := p.messages.Append(ctx, conversationID, message); err != nil {
		return err
	}
	key := models.FolderKey{Owner: owner, Name: folder}
	if _, err := p.folders.Bump(ctx, key, conversationID); err != nil {
		return err
	}
	if p.notifier != nil {
		p.notifier.NotifyFolderBumped(key, conversationID)
	}
	return nil
}

func validateParties(from, to string) error {
	if err := validator.ValidateOwnerID(from); err != nil {
		return apperrors.InvalidInput("from", err.Error())
	}
	if err := validator.ValidateOwnerID(to); err != nil {
		return apperrors.InvalidInput("to", err.Error())
	}
	return nil
}
