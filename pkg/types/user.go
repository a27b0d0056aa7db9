package types

// IssuerCLI labels principals synthesized for local command-line use.
const IssuerCLI = "cli"

// SubjectAnonymous is the subject of an unauthenticated principal.
const SubjectAnonymous = "anonymous"

// User is the authenticated principal of a Context.
type User struct {
	Issuer          string // empty when the principal has no issuer
	Subject         string
	Audience        []string
	TokenIdentifier string
	Claims          map[string]string
}

// CLIUser returns the unverified principal used for command-line
// operations. An empty subject yields the anonymous principal.
func CLIUser(subject string) User {
	if subject == "" {
		subject = SubjectAnonymous
	}
	return User{
		Issuer:          IssuerCLI,
		Subject:         subject,
		Audience:        []string{},
		TokenIdentifier: IssuerCLI,
		Claims:          map[string]string{},
	}
}

// AnonymousUser returns the principal of an unauthenticated network request.
func AnonymousUser() User {
	return User{
		Subject:  SubjectAnonymous,
		Audience: []string{},
		Claims:   map[string]string{},
	}
}

// IsCLI reports whether the principal was synthesized by the command line.
// Such principals never passed through token verification.
func (u User) IsCLI() bool {
	return u.Issuer == IssuerCLI && u.TokenIdentifier == IssuerCLI
}

// IsAnonymous reports whether the principal has no identity.
func (u User) IsAnonymous() bool {
	return u.Subject == "" || u.Subject == SubjectAnonymous
}
