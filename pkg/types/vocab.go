package types

// Vocabulary namespaces.
const (
	NsAS    = "https://www.w3.org/ns/activitystreams#"
	NsSec   = "https://w3id.org/security#"
	NsLDP   = "http://www.w3.org/ns/ldp#"
	NsKroeg = "https://puckipedia.com/kroeg/ns#"
	NsXSD   = "http://www.w3.org/2001/XMLSchema#"
)

// Expanded IRIs used by the server.
const (
	ASPerson            = NsAS + "Person"
	ASNote              = NsAS + "Note"
	ASCollection        = NsAS + "Collection"
	ASOrderedCollection = NsAS + "OrderedCollection"
	ASPublic            = NsAS + "Public"

	ASName              = NsAS + "name"
	ASPreferredUsername = NsAS + "preferredUsername"
	ASOutbox            = NsAS + "outbox"
	ASItems             = NsAS + "items"
	ASOrderedItems      = NsAS + "orderedItems"
	ASTotalItems        = NsAS + "totalItems"
	ASTo                = NsAS + "to"
	ASCc                = NsAS + "cc"
	ASBto               = NsAS + "bto"
	ASBcc               = NsAS + "bcc"
	ASAudience          = NsAS + "audience"

	LDPInbox = NsLDP + "inbox"

	SecPublicKey     = NsSec + "publicKey"
	SecPublicKeyPem  = NsSec + "publicKeyPem"
	SecPrivateKeyPem = NsSec + "privateKeyPem"
	SecOwner         = NsSec + "owner"

	KroegInstance = NsKroeg + "instance"

	XSDInteger            = NsXSD + "integer"
	XSDNonNegativeInteger = NsXSD + "nonNegativeInteger"
)
