package lti

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openfun/ashley-sub000/internal/shared/errors"
	"github.com/openfun/ashley-sub000/internal/shared/logger"
)

const (
	messageTypeBasicLaunch = "basic-lti-launch-request"
	ltiVersion1p0          = "LTI-1p0"
	signatureMethodHMAC    = "HMAC-SHA1"

	nonceMinLength = 5
	nonceMaxLength = 50

	// Dummy credential bound when the consumer key is unknown or disabled,
	// so that the signature check costs the same and fails uniformly.
	dummySharedSecret = "dummy_client_sec_123456"
)

// Verifier checks LTI launch requests: parameter set, timestamp window,
// nonce replay and OAuth 1.0 HMAC-SHA1 signature.
type Verifier struct {
	consumers ConsumerRepository
	passports PassportRepository
	nonces    NonceStore
	clockSkew time.Duration
	now       func() time.Time
	logger    logger.Interface
}

func NewVerifier(consumers ConsumerRepository, passports PassportRepository, nonces NonceStore, clockSkew time.Duration, log logger.Interface) *Verifier {
	if clockSkew <= 0 {
		clockSkew = 5 * time.Minute
	}
	return &Verifier{
		consumers: consumers,
		passports: passports,
		nonces:    nonces,
		clockSkew: clockSkew,
		now:       time.Now,
		logger:    log,
	}
}

// Verify runs every check on the launch. On success the launch is marked
// valid and carries its resolved consumer. All failures map onto a single
// invalid-launch error category; the reason is only logged.
func (v *Verifier) Verify(ctx context.Context, launch *LaunchRequest) error {
	if err := v.verify(ctx, launch); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		v.logger.Warnw("LTI launch rejected", "reason", err.Error())
		return errors.NewInvalidLaunchError("launch verification failed", err.Error())
	}
	return nil
}

func (v *Verifier) verify(ctx context.Context, launch *LaunchRequest) error {
	if err := launch.ValidateParams(); err != nil {
		return err
	}

	if mt := launch.GetParam("lti_message_type"); mt != messageTypeBasicLaunch {
		return fmt.Errorf("unsupported lti_message_type %q", mt)
	}
	if version := launch.GetParam("lti_version"); version != ltiVersion1p0 {
		return fmt.Errorf("unsupported lti_version %q", version)
	}
	if method := launch.GetParam("oauth_signature_method"); method != signatureMethodHMAC {
		return fmt.Errorf("unsupported oauth_signature_method %q", method)
	}
	if version := launch.GetParam("oauth_version"); version != "" && version != "1.0" {
		return fmt.Errorf("unsupported oauth_version %q", version)
	}

	nonce := launch.GetParam("oauth_nonce")
	if len(nonce) < nonceMinLength || len(nonce) > nonceMaxLength {
		return fmt.Errorf("oauth_nonce length out of bounds")
	}

	timestamp := launch.GetParam("oauth_timestamp")
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed oauth_timestamp")
	}
	drift := v.now().Sub(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > v.clockSkew {
		return fmt.Errorf("oauth_timestamp outside the accepted window")
	}

	consumerKey := launch.GetParam("oauth_consumer_key")
	if consumerKey == "" {
		return fmt.Errorf("missing oauth_consumer_key")
	}

	fresh, err := v.nonces.CheckAndStore(ctx, consumerKey, timestamp, nonce)
	if err != nil {
		return fmt.Errorf("nonce store unavailable: %w", err)
	}
	if !fresh {
		return fmt.Errorf("oauth_nonce already used")
	}

	// An unknown or disabled key binds the dummy secret so the signature
	// check takes the same time before failing.
	passport, err := v.passports.GetEnabledByKey(ctx, consumerKey)
	if err != nil {
		return fmt.Errorf("passport lookup failed: %w", err)
	}
	secret := dummySharedSecret
	if passport != nil {
		secret = passport.SharedSecret()
	}

	signatureOK := CheckSignature(launch.method, launch.url, launch.params, secret)
	if passport == nil || !signatureOK {
		return fmt.Errorf("signature verification failed")
	}

	consumer, err := v.consumers.GetBySlug(ctx, passport.ConsumerSlug())
	if err != nil {
		return fmt.Errorf("consumer lookup failed: %w", err)
	}
	if consumer == nil {
		return fmt.Errorf("passport has no consumer")
	}

	launch.markVerified(consumer)
	return nil
}
