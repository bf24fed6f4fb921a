package messenger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"chatbot-router/internal/domain"
)

// ConsoleClient imprime las respuestas en lugar de enviarlas. Lo usa cmd/cli_chat.
type ConsoleClient struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleClient(out io.Writer) *ConsoleClient {
	return &ConsoleClient{out: out}
}

func (c *ConsoleClient) printf(format string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, format, args...)
	return err
}

func (c *ConsoleClient) SendText(_ context.Context, _ string, text string) error {
	return c.printf("bot> %s\n", text)
}

func (c *ConsoleClient) SendButtons(_ context.Context, _ string, text string, buttons []domain.Button) error {
	titles := make([]string, 0, len(buttons))
	for _, b := range buttons {
		titles = append(titles, "["+b.Title+"]")
	}
	return c.printf("bot> %s %s\n", text, strings.Join(titles, " "))
}

func (c *ConsoleClient) SendQuickReplies(_ context.Context, _ string, text string, options []domain.QuickReplyOption) error {
	titles := make([]string, 0, len(options))
	for _, o := range options {
		titles = append(titles, "("+o.Title+")")
	}
	return c.printf("bot> %s %s\n", text, strings.Join(titles, " "))
}

func (c *ConsoleClient) SendImage(_ context.Context, _ string, imageURL string) error {
	return c.printf("bot> <image %s>\n", imageURL)
}

func (c *ConsoleClient) SendTypingOn(context.Context, string) error  { return nil }
func (c *ConsoleClient) SendTypingOff(context.Context, string) error { return nil }

func (c *ConsoleClient) HandleMessage(ctx context.Context, fragment domain.Fragment, recipient string) error {
	switch fragment.Type {
	case domain.FragmentText:
		return c.SendText(ctx, recipient, fragment.Text)
	case domain.FragmentQuickReplies:
		if fragment.QuickReplies == nil {
			return nil
		}
		return c.SendQuickReplies(ctx, recipient, fragment.QuickReplies.Title, domain.TextOptions(fragment.QuickReplies.Replies...))
	case domain.FragmentImage:
		return c.SendImage(ctx, recipient, fragment.ImageURL)
	case domain.FragmentCard:
		return c.HandleCardBatch(ctx, []domain.Fragment{fragment}, recipient)
	default:
		return c.printf("bot> <payload>\n")
	}
}

func (c *ConsoleClient) HandleCardBatch(_ context.Context, cards []domain.Fragment, _ string) error {
	for _, el := range cardElements(cards) {
		if err := c.printf("bot> [card] %s - %s\n", el.Title, el.Subtitle); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleClient) HandleAttachments(ctx context.Context, _ []domain.Attachment, sender string) error {
	return c.SendText(ctx, sender, attachmentAck)
}
