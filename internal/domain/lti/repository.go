package lti

import "context"

// ConsumerRepository persists LTI consumers.
type ConsumerRepository interface {
	Create(ctx context.Context, consumer *Consumer) error
	GetBySlug(ctx context.Context, slug string) (*Consumer, error)
	List(ctx context.Context) ([]*Consumer, error)
}

// PassportRepository persists passports. GetEnabledByKey returns nil (no
// error) when the key is unknown or the passport is disabled, which the
// verifier maps onto the dummy-secret path.
type PassportRepository interface {
	Create(ctx context.Context, passport *Passport) error
	GetByKey(ctx context.Context, consumerKey string) (*Passport, error)
	GetEnabledByKey(ctx context.Context, consumerKey string) (*Passport, error)
	ListByConsumer(ctx context.Context, consumerSlug string) ([]*Passport, error)
}

// NonceStore remembers (consumer key, timestamp, nonce) triples for the
// replay window. CheckAndStore returns false when the triple was already
// seen.
type NonceStore interface {
	CheckAndStore(ctx context.Context, consumerKey, timestamp, nonce string) (bool, error)
}
