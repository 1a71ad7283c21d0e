package lti

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Consumer represents an LMS installation that launches the tool. Its slug
// is immutable and namespaces every remote user id it sends.
type Consumer struct {
	slug      string
	title     string
	url       string
	createdAt time.Time
	updatedAt time.Time
}

func NewConsumer(slug, title, url string) (*Consumer, error) {
	if slug == "" {
		return nil, fmt.Errorf("consumer slug is required")
	}
	if title == "" {
		return nil, fmt.Errorf("consumer title is required")
	}
	now := time.Now()
	return &Consumer{
		slug:      slug,
		title:     title,
		url:       url,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructConsumer(slug, title, url string, createdAt, updatedAt time.Time) *Consumer {
	return &Consumer{
		slug:      slug,
		title:     title,
		url:       url,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (c *Consumer) Slug() string {
	return c.slug
}

func (c *Consumer) Title() string {
	return c.title
}

// URL is the home page of the consumer site, used as the xAPI actor
// account home_page. It may be empty for consumers provisioned without it.
func (c *Consumer) URL() string {
	return c.url
}

func (c *Consumer) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Consumer) UpdatedAt() time.Time {
	return c.updatedAt
}

const (
	oauthConsumerKeyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	oauthConsumerKeySize  = 20
	sharedSecretChars     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&*+-=?@^_"
	sharedSecretSize      = 40
)

// Passport holds the OAuth credential pair a consumer signs its launches
// with. Both values are generated at creation and never mutated.
type Passport struct {
	id           uint
	consumerSlug string
	title        string
	consumerKey  string
	sharedSecret string
	isEnabled    bool
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPassport(consumerSlug, title string) (*Passport, error) {
	if consumerSlug == "" {
		return nil, fmt.Errorf("passport consumer is required")
	}
	key, err := randomString(oauthConsumerKeyChars, oauthConsumerKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate consumer key: %w", err)
	}
	secret, err := randomString(sharedSecretChars, sharedSecretSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate shared secret: %w", err)
	}
	now := time.Now()
	return &Passport{
		consumerSlug: consumerSlug,
		title:        title,
		consumerKey:  key,
		sharedSecret: secret,
		isEnabled:    true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

func ReconstructPassport(id uint, consumerSlug, title, consumerKey, sharedSecret string, isEnabled bool, createdAt, updatedAt time.Time) *Passport {
	return &Passport{
		id:           id,
		consumerSlug: consumerSlug,
		title:        title,
		consumerKey:  consumerKey,
		sharedSecret: sharedSecret,
		isEnabled:    isEnabled,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (p *Passport) ID() uint {
	return p.id
}

func (p *Passport) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("passport ID is already set")
	}
	p.id = id
	return nil
}

func (p *Passport) ConsumerSlug() string {
	return p.consumerSlug
}

func (p *Passport) Title() string {
	return p.title
}

func (p *Passport) ConsumerKey() string {
	return p.consumerKey
}

func (p *Passport) SharedSecret() string {
	return p.sharedSecret
}

func (p *Passport) IsEnabled() bool {
	return p.isEnabled
}

func (p *Passport) Disable() {
	p.isEnabled = false
	p.updatedAt = time.Now()
}

func (p *Passport) Enable() {
	p.isEnabled = true
	p.updatedAt = time.Now()
}

func (p *Passport) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Passport) UpdatedAt() time.Time {
	return p.updatedAt
}

func randomString(alphabet string, size int) (string, error) {
	out := make([]byte, size)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
