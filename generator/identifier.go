package generator

import (
	"encoding/hex"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const (
	identifierPrefix    = "cw-"
	identifierNamespace = "chatwidget:order:"
)

// NewIdentifier derives the public artifact basename for an order. The same
// order key always yields the same identifier, so regenerating an order
// overwrites its artifacts instead of adding new ones. The result is "cw-"
// followed by 32 lowercase hex digits and never contains the key itself.
//
// Callers must reject empty keys; see models.Order.Validate.
func NewIdentifier(orderKey string) string {
	// hex keeps hashid's input normalization from merging keys that differ
	// only in case or whitespace.
	key := identifierNamespace + hex.EncodeToString([]byte(orderKey))
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err != nil || uid == uuid.Nil {
		uid = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return identifierPrefix + strings.ReplaceAll(uid.String(), "-", "")
}
