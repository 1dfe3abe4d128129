package repositories

import "context"

// CredentialProvider obtains a signed room-access token for an identity
type CredentialProvider interface {
	RequestToken(ctx context.Context, identity, room string) (string, error)
}
