package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Verify checks an RS256 bearer token against the public key named by its
// kid header. The key must be owned by the token subject.
func Verify(ctx context.Context, store types.EntityStore, raw string) (types.User, error) {
	var keyID string
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid")
		}
		keyID = kid
		key, err := store.Get(ctx, kid, true)
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, fmt.Errorf("unknown key %s", kid)
		}
		sub, _ := claims.GetSubject()
		owners := key.IDs(types.SecOwner)
		if len(owners) == 0 || owners[0] != sub {
			return nil, fmt.Errorf("key %s is not owned by %s", kid, sub)
		}
		return jwt.ParseRSAPublicKeyFromPEM([]byte(key.String(types.SecPublicKeyPem)))
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return types.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	iss, _ := claims.GetIssuer()
	sub, _ := claims.GetSubject()
	aud, _ := claims.GetAudience()
	user := types.User{
		Issuer:          iss,
		Subject:         sub,
		Audience:        []string(aud),
		TokenIdentifier: keyID,
		Claims:          map[string]string{},
	}
	for k, v := range claims {
		if s, ok := v.(string); ok {
			user.Claims[k] = s
		}
	}
	return user, nil
}
