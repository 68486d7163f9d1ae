package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
)

// EmailService отправляет транзакционные письма
type EmailService interface {
	SendOrderStatus(ctx context.Context, order *entity.Order) error
}

// NoopEmailService используется, когда отправка писем не настроена
type NoopEmailService struct {
	logger *zap.Logger
}

// NewNoopEmailService создаёт заглушку почтового сервиса
func NewNoopEmailService(logger *zap.Logger) *NoopEmailService {
	return &NoopEmailService{logger: logger}
}

func (s *NoopEmailService) SendOrderStatus(ctx context.Context, order *entity.Order) error {
	s.logger.Debug("email disabled, skip order status email",
		zap.Uint("order_id", order.ID),
		zap.String("status", order.Status))
	return nil
}

// ResendEmailService отправляет письма через Resend REST API
type ResendEmailService struct {
	from   string
	client *resend.Client
}

// NewResendEmailService создаёт клиента Resend
func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

// SendOrderStatus сообщает покупателю о новом статусе заказа. Одна попытка, без повторов.
func (s *ResendEmailService) SendOrderStatus(ctx context.Context, order *entity.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}

	text := orderStatusMarkdown(order)
	html, err := renderMarkdown(text)
	if err != nil {
		return fmt.Errorf("render order email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{order.CustomerEmail},
		Subject: fmt.Sprintf("Order #%d is %s", order.ID, order.Status),
		Text:    text,
		Html:    html,
	}
	options := &resend.SendEmailOptions{
		// одна и та же смена статуса не уходит дважды
		IdempotencyKey: fmt.Sprintf("order-%d-v%d", order.ID, order.Version),
	}

	if _, err := s.client.Emails.SendWithOptions(ctx, params, options); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.Table))

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// orderStatusMarkdown формирует тело письма в markdown; из него же получается HTML-версия
func orderStatusMarkdown(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Order #%d\n\n", order.ID)
	fmt.Fprintf(&b, "Your order status is now **%s**.\n\n", order.Status)
	if len(order.Items) > 0 {
		b.WriteString("| Item | Qty | Price |\n|---|---:|---:|\n")
		for _, item := range order.Items {
			fmt.Fprintf(&b, "| %s | %d | %.2f |\n", escapeTableCell(item.ProductName), item.Quantity, item.Subtotal())
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: **%.2f**\n", order.Total)
	return b.String()
}

func escapeTableCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
