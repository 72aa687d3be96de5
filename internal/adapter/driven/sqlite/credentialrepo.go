package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Token values are encrypted with AES-256-GCM before write and decrypted
// after read when a key is configured; a nil key stores them in plaintext.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key, or nil to disable encryption.
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes for
// AES-256-GCM, or nil to store tokens unencrypted.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Get retrieves the credential for the given user.
// Returns (nil, nil) if no credential exists.
func (r *CredentialRepo) Get(ctx context.Context, userID string) (*model.Credential, error) {
	const query = `SELECT access_token, refresh_token, scope, token_type, expiry, updated_at
		FROM google_credentials WHERE user_id = ?`

	var cred model.Credential
	var expiry, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, userID).Scan(
		&cred.AccessToken, &cred.RefreshToken, &cred.Scope, &cred.TokenType, &expiry, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential for user %q: %w", userID, err)
	}

	cred.UserID = userID
	if cred.AccessToken, err = r.decrypt(cred.AccessToken); err != nil {
		return nil, fmt.Errorf("decrypt access token for user %q: %w", userID, err)
	}
	if cred.RefreshToken, err = r.decrypt(cred.RefreshToken); err != nil {
		return nil, fmt.Errorf("decrypt refresh token for user %q: %w", userID, err)
	}
	if expiry != "" {
		if cred.Expiry, err = time.Parse(time.RFC3339Nano, expiry); err != nil {
			return nil, fmt.Errorf("parse expiry for user %q: %w", userID, err)
		}
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for user %q: %w", userID, err)
	}

	return &cred, nil
}

// Upsert merges the token update into the stored credential and persists
// the result. Fields present in the update overwrite; zero-valued fields
// preserve the stored value (a refresh response commonly omits
// refresh_token). Returns driven.ErrUnusableCredential if no access token
// is available from either source.
func (r *CredentialRepo) Upsert(ctx context.Context, userID string, update model.TokenUpdate) (model.Credential, error) {
	prev, err := r.Get(ctx, userID)
	if err != nil {
		return model.Credential{}, err
	}

	merged := model.Credential{UserID: userID}
	if prev != nil {
		merged = *prev
	}
	if update.AccessToken != "" {
		merged.AccessToken = update.AccessToken
	}
	if update.RefreshToken != "" {
		merged.RefreshToken = update.RefreshToken
	}
	if update.Scope != "" {
		merged.Scope = update.Scope
	}
	if update.TokenType != "" {
		merged.TokenType = update.TokenType
	}
	if !update.Expiry.IsZero() {
		merged.Expiry = update.Expiry
	}

	if merged.AccessToken == "" {
		return model.Credential{}, driven.ErrUnusableCredential
	}

	accessEnc, err := r.encrypt(merged.AccessToken)
	if err != nil {
		return model.Credential{}, fmt.Errorf("encrypt access token: %w", err)
	}
	refreshEnc, err := r.encrypt(merged.RefreshToken)
	if err != nil {
		return model.Credential{}, fmt.Errorf("encrypt refresh token: %w", err)
	}

	expiry := ""
	if !merged.Expiry.IsZero() {
		expiry = merged.Expiry.UTC().Format(time.RFC3339Nano)
	}

	const query = `INSERT OR REPLACE INTO google_credentials
		(user_id, access_token, refresh_token, scope, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		userID, accessEnc, refreshEnc, merged.Scope, merged.TokenType, expiry,
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("upsert credential for user %q: %w", userID, err)
	}

	return merged, nil
}

// encrypt encrypts plaintext using AES-256-GCM, returning base64 of
// nonce || ciphertext || tag. Empty strings and nil keys pass through.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil || plaintext == "" {
		return plaintext, nil
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt reverses encrypt. Empty strings and nil keys pass through.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	if r.key == nil || encoded == "" {
		return encoded, nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
