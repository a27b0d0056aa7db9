// Package auth issues and verifies the bearer tokens used to act as a
// local actor.
package auth

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Issuer is the iss claim of tokens minted by the operator CLI.
const Issuer = "kroeg-call"

// NeverExpires is the exp claim of issued tokens.
const NeverExpires = int64(math.MaxUint32)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// KeyFor resolves the key item referenced by the actor's sec:publicKey.
func KeyFor(ctx context.Context, store types.EntityStore, actorID string) (*types.Item, error) {
	actor, err := store.Get(ctx, actorID, true)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("actor %s: %w", actorID, types.ErrNotFound)
	}
	keys := actor.IDs(types.SecPublicKey)
	if len(keys) == 0 {
		return nil, fmt.Errorf("actor %s has no public key: %w", actorID, types.ErrMissingKeyMaterial)
	}
	key, err := store.Get(ctx, keys[0], true)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("key %s: %w", keys[0], types.ErrMissingKeyMaterial)
	}
	return key, nil
}

// IssueToken signs an RS256 token for actorID with the private key kept in
// the meta of the actor's key item.
func IssueToken(ctx context.Context, store types.EntityStore, actorID string) (string, error) {
	key, err := KeyFor(ctx, store, actorID)
	if err != nil {
		return "", err
	}
	pem := key.MetaString(types.SecPrivateKeyPem)
	if pem == "" {
		return "", fmt.Errorf("key %s has no private key: %w", key.ID, types.ErrMissingKeyMaterial)
	}
	private, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
	if err != nil {
		return "", fmt.Errorf("key %s: %w: %w", key.ID, types.ErrMissingKeyMaterial, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": Issuer,
		"sub": actorID,
		"exp": NeverExpires,
	})
	token.Header["kid"] = key.ID
	signed, err := token.SignedString(private)
	if err != nil {
		return "", fmt.Errorf("signing token for %s: %w", actorID, err)
	}
	return signed, nil
}
