package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

const issuer = "recruiting-funnel"

var _ adapter.InterviewLinks = (*InterviewTokens)(nil)

// InterviewClaims bind an interview link to one application.
type InterviewClaims struct {
	ConversationID string `json:"cid"`
	JobID          string `json:"jid"`
	jwt.RegisteredClaims
}

// InterviewTokens signs the links sent to candidates and verifies them when
// the interview page is opened.
type InterviewTokens struct {
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewInterviewTokens(baseURL, secret string, ttl time.Duration) (*InterviewTokens, error) {
	if secret == "" {
		return nil, errors.New("interview token secret empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("interview base url: %w", err)
	}
	return &InterviewTokens{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (t *InterviewTokens) Sign(applicationID, conversationID, jobID string) (string, error) {
	now := t.now()
	claims := InterviewClaims{
		ConversationID: conversationID,
		JobID:          jobID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  applicationID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies signature, issuer and expiry. Any failure is reported as
// ErrInvalidArgument.
func (t *InterviewTokens) Parse(token string) (*InterviewClaims, error) {
	claims := &InterviewClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: interview token: %w", domain.ErrInvalidArgument, err)
	}
	return claims, nil
}

// LinkFor returns {base}/{applicationID}?token=...
func (t *InterviewTokens) LinkFor(applicationID, conversationID, jobID string) (string, error) {
	tok, err := t.Sign(applicationID, conversationID, jobID)
	if err != nil {
		return "", err
	}
	return t.baseURL + "/" + url.PathEscape(applicationID) + "?token=" + url.QueryEscape(tok), nil
}
