package smtp

import (
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/postoffice/internal/validator"
)

// ConversationHeader carries the discriminator of the conversation a mail
// replies to
const ConversationHeader = "X-Postoffice-Conversation"

// maxSubjectLength is the RFC 5322 line limit
const maxSubjectLength = 998

var (
	// subjectTagPattern matches a "[po:<discriminator>]" tag in the subject
	subjectTagPattern = regexp.MustCompile(`\[po:([^\]\s]+)\]`)
	scriptPattern     = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
)

// ParsedEmail is the part of a mail that becomes a conversation message
type ParsedEmail struct {
	SenderAddress string
	SenderName    string
	Subject       string
	Body          string
	// Discriminator is set when the mail replies to an existing conversation
	Discriminator string
}

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read envelope: %w", err)
	}

	parsed := &ParsedEmail{
		Subject: strings.TrimSpace(env.GetHeader("Subject")),
		Body:    strings.TrimSpace(env.Text),
	}
	if parsed.Body == "" && env.HTML != "" {
		parsed.Body = strings.Join(strings.Fields(stripHTMLTags(env.HTML)), " ")
	}

	if addresses, err := env.AddressList("From"); err == nil && len(addresses) > 0 {
		parsed.SenderName = addresses[0].Name
		parsed.SenderAddress = addresses[0].Address
	}

	parsed.Discriminator = strings.TrimSpace(env.GetHeader(ConversationHeader))
	if match := subjectTagPattern.FindStringSubmatch(parsed.Subject); match != nil {
		if parsed.Discriminator == "" {
			parsed.Discriminator = match[1]
		}
		parsed.Subject = strings.Join(strings.Fields(subjectTagPattern.ReplaceAllString(parsed.Subject, "")), " ")
	}
	parsed.Subject = validator.SanitizeString(parsed.Subject, maxSubjectLength)

	return parsed, nil
}

// localPart returns the lower-cased local part of an address such as
// "Alice <alice@example.com>" or "<alice@example.com>", plus its domain
func localPart(address string) (string, string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", "", fmt.Errorf("empty address")
	}
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}
	if err := validator.ValidateEmail(address); err != nil {
		return "", "", fmt.Errorf("invalid email address %q: %w", address, err)
	}

	local, domain, ok := strings.Cut(address, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", "", fmt.Errorf("invalid email address: %s", address)
	}
	return strings.ToLower(local), strings.ToLower(domain), nil
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	// Remove script and style elements
	html = scriptPattern.ReplaceAllString(html, "")

	// Remove HTML tags
	html = tagPattern.ReplaceAllString(html, " ")

	// Decode common HTML entities
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)
	return replacer.Replace(html)
}
