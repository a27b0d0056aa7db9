package activitypub

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// DefaultKeyBits is the RSA modulus size of generated actor keys.
const DefaultKeyBits = 2048

// CreateActorHandler attaches key material, an inbox, and an outbox to an
// existing actor entity.
type CreateActorHandler struct {
	KeyBits int
	Logger  *slog.Logger
}

// Handle implements MessageHandler. The actor must already be stored.
func (h CreateActorHandler) Handle(ctx context.Context, c *types.Context, id string) error {
	actor, err := c.EntityStore.Get(ctx, id, true)
	if err != nil {
		return err
	}
	if actor == nil {
		return fmt.Errorf("actor %s: %w", id, types.ErrNotFound)
	}

	bits := h.KeyBits
	if bits == 0 {
		bits = DefaultKeyBits
	}
	private, public, err := generateKey(bits)
	if err != nil {
		return fmt.Errorf("generating key for %s: %w", id, err)
	}

	keyID := id + "#key"
	key := types.NewItem(keyID)
	key.Push(types.SecPublicKeyPem, types.Literal(public))
	key.Push(types.SecOwner, types.Ref(id))
	key.PushMeta(types.SecPrivateKeyPem, types.Literal(private))
	key.StampInstance(c.InstanceID)

	inbox := newCollection(id+"/inbox", c.InstanceID)
	outbox := newCollection(id+"/outbox", c.InstanceID)

	actor.Main[types.SecPublicKey] = []any{types.Ref(keyID)}
	actor.Main[types.LDPInbox] = []any{types.Ref(inbox.ID)}
	actor.Main[types.ASOutbox] = []any{types.Ref(outbox.ID)}

	for _, item := range []*types.Item{key, inbox, outbox, actor} {
		if err := c.EntityStore.Put(ctx, item.ID, item); err != nil {
			return err
		}
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("created actor", "actor", id, "key", keyID)
	return nil
}

func newCollection(id string, instanceID int64) *types.Item {
	item := types.NewItem(id)
	item.Main["@type"] = []any{types.ASOrderedCollection}
	item.StampInstance(instanceID)
	return item
}

func generateKey(bits int) (private, public string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", err
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", err
	}
	private = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	public = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	return private, public, nil
}
