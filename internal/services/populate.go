package services

import (
	"context"
	"fmt"
)

// Populate starts count conversations from one owner to another, each with
// a single numbered message, and returns their discriminators. It stops at
// the first failure.
func Populate(ctx context.Context, messenger Messenger, from, to string, count int) ([]string, error) {
	discriminators := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return discriminators, err
		}
		subject := fmt.Sprintf("Conversation %d", i+1)
		body := fmt.Sprintf("Message %d from %s to %s", i+1, from, to)
		discriminator, err := messenger.StartConversation(ctx, from, to, subject, body)
		if err != nil {
			return discriminators, fmt.Errorf("failed to populate conversation %d: %w", i+1, err)
		}
		discriminators = append(discriminators, discriminator)
	}
	return discriminators, nil
}
