package ports

// TokenIssuer signs a bearer credential asserting a verified email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}
