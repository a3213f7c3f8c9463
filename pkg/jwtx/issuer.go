package jwtx

// Issuer mints and checks the service's tokens, pairing each purpose with
// its secret and lifetime.
type Issuer struct {
	Codec   Codec
	Secrets Secrets
}

// NewIssuer validates secrets and returns an Issuer using codec.
func NewIssuer(secrets Secrets, codec Codec) (*Issuer, error) {
	if err := secrets.Validate(); err != nil {
		return nil, err
	}
	return &Issuer{Codec: codec, Secrets: secrets}, nil
}

func (i *Issuer) IssueAccess(accountID string) (string, error) {
	return i.Codec.Sign(NewClaims(accountID, PurposeAccess), i.Secrets.Access, AccessTokenTTL)
}

func (i *Issuer) VerifyAccess(token string) (Claims, error) {
	return i.Codec.Verify(token, i.Secrets.Access, PurposeAccess)
}

func (i *Issuer) IssueRefresh(accountID string) (string, error) {
	return i.Codec.Sign(NewClaims(accountID, PurposeRefresh), i.Secrets.Refresh, RefreshTokenTTL)
}

func (i *Issuer) VerifyRefresh(token string) (Claims, error) {
	return i.Codec.Verify(token, i.Secrets.Refresh, PurposeRefresh)
}

func (i *Issuer) IssueEmailVerify(accountID, email string) (string, error) {
	claims := NewClaims(accountID, PurposeEmailVerify)
	claims.Email = email
	return i.Codec.Sign(claims, i.Secrets.EmailVerify, EmailVerifyTTL)
}

func (i *Issuer) VerifyEmailVerify(token string) (Claims, error) {
	return i.Codec.Verify(token, i.Secrets.EmailVerify, PurposeEmailVerify)
}

// IssuePasswordReset signs a reset token with the account's current
// password hash. Once the hash changes every token minted against the old
// one stops verifying.
func (i *Issuer) IssuePasswordReset(accountID, email, passwordHash string) (string, error) {
	claims := NewClaims(accountID, PurposePasswordReset)
	claims.Email = email
	return i.Codec.Sign(claims, []byte(passwordHash), PasswordResetTTL)
}

// VerifyPasswordReset checks token against the account's current password
// hash.
func (i *Issuer) VerifyPasswordReset(token, passwordHash string) (Claims, error) {
	return i.Codec.Verify(token, []byte(passwordHash), PurposePasswordReset)
}
