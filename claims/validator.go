package claims

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tripora/authgate/permission"
)

// SigningMethod selects the credential signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 is the default.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 is supported for development setups.
	MethodHS256 SigningMethod = "hs256"
)

// Config configures a [Validator].
//
// Config instances are intended to be set during initialization and then
// treated as immutable.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration

	// AccessTTL applies to credentials minted via Issue (tests and fake
	// identity providers); verification ignores it.
	AccessTTL time.Duration
}

// Validator verifies credentials and extracts roles. Safe for concurrent use
// after construction.
type Validator struct {
	cfg Config
}

// NewValidator validates cfg and returns a Validator.
func NewValidator(cfg Config) (*Validator, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = time.Hour
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires a shared key")
		}
	case MethodEd25519, "":
		cfg.SigningMethod = MethodEd25519
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires a public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Validator{cfg: cfg}, nil
}

// Verify checks the credential's signature, structure, and expiry, then
// extracts the role. It never returns an error; failures populate
// Report.Errors in order of detection.
func (v *Validator) Verify(credential string) Report {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.method().Alg()}),
	}
	if v.cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.cfg.Leeway))
	}
	if v.cfg.RequireIAT {
		options = append(options, jwt.WithIssuedAt())
	}
	if v.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		options = append(options, jwt.WithAudience(v.cfg.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(credential, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != v.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return v.verifyKey()
	})
	if err != nil {
		return Report{Errors: []string{verifyError(err)}}
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Report{Errors: []string{"credential claims invalid"}}
	}
	if c.IssuedAt != nil && v.cfg.MaxFutureIAT > 0 {
		if c.IssuedAt.Time.After(time.Now().Add(v.cfg.MaxFutureIAT)) {
			return Report{Errors: []string{"credential issued too far in the future"}}
		}
	}
	if c.Subject == "" {
		return Report{Claims: c, Errors: []string{"credential missing subject"}}
	}

	report := Report{
		Valid:  true,
		UserID: c.Subject,
		Claims: c,
	}
	report.Role, report.Warnings = extractRole(c)
	return report
}

// Issue mints a signed credential carrying the given identity. It exists for
// tests and fake identity providers; production credentials come from the
// real provider.
func (v *Validator) Issue(userID string, c Claims) (string, error) {
	now := time.Now()
	c.Subject = userID
	if c.IssuedAt == nil {
		c.IssuedAt = jwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(v.cfg.AccessTTL))
	}
	if v.cfg.Issuer != "" {
		c.Issuer = v.cfg.Issuer
	}
	if v.cfg.Audience != "" && len(c.Audience) == 0 {
		c.Audience = jwt.ClaimStrings{v.cfg.Audience}
	}

	token := jwt.NewWithClaims(v.method(), c)
	signKey, err := v.signKey()
	if err != nil {
		return "", err
	}
	return token.SignedString(signKey)
}

// extractRole applies the precedence: explicit role claim, then group
// membership in priority order, then the traveler default.
func extractRole(c *Claims) (permission.Role, []string) {
	var warnings []string

	if c.Role != "" {
		role, known := permission.ParseRole(c.Role)
		if known {
			return role, nil
		}
		warnings = append(warnings, fmt.Sprintf("unknown role claim %q, falling back to groups", c.Role))
	}

	if role, known := permission.RoleFromGroups(c.Groups); known {
		return role, warnings
	}

	warnings = append(warnings, "no role claim or role group present, defaulting to traveler")
	return permission.RoleTraveler, warnings
}

func verifyError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "credential expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "credential not valid yet"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "credential malformed"
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return "credential signature invalid"
	default:
		return fmt.Sprintf("credential rejected: %v", err)
	}
}

func (v *Validator) method() jwt.SigningMethod {
	switch v.cfg.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (v *Validator) signKey() (interface{}, error) {
	switch v.cfg.SigningMethod {
	case MethodHS256:
		return v.cfg.PrivateKey, nil
	default:
		return parseEdPrivateKey(v.cfg.PrivateKey)
	}
}

func (v *Validator) verifyKey() (interface{}, error) {
	switch v.cfg.SigningMethod {
	case MethodHS256:
		return v.cfg.PrivateKey, nil
	default:
		return parseEdPublicKey(v.cfg.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
