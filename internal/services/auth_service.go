package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sjperalta/fintera-ledger/internal/config"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown tenant or a wrong key
var ErrInvalidCredentials = errors.New("credenciales inválidas")

// TokenClaims is the bearer token payload: the tenant and the acting user
type TokenClaims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenResult is returned by IssueToken
type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
}

// AuthService exchanges tenant API keys for signed bearer tokens
type AuthService struct {
	tenants repository.TenantRepository
	cfg     *config.Config
	now     func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(tenants repository.TenantRepository, cfg *config.Config) *AuthService {
	return &AuthService{tenants: tenants, cfg: cfg, now: time.Now}
}

// CreateTenant registers a tenant and returns its API key. The key is
// shown only here; the tenant row keeps a bcrypt hash.
func (s *AuthService) CreateTenant(ctx context.Context, id, name string) (*models.Tenant, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", errors.New("el nombre del negocio es requerido")
	}
	if id == "" {
		id = uuid.NewString()
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate api key: %w", err)
	}
	hash, err := HashSecret(apiKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash api key: %w", err)
	}

	tenant := &models.Tenant{ID: id, Name: name, APIKeyHash: hash}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, "", fmt.Errorf("failed to create tenant: %w", err)
	}
	return tenant, apiKey, nil
}

// IssueToken checks the tenant's API key and signs a token for userID
func (s *AuthService) IssueToken(ctx context.Context, tenantID, apiKey, userID string) (*TokenResult, error) {
	if tenantID == "" || apiKey == "" || userID == "" {
		return nil, ErrInvalidCredentials
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !VerifySecret(apiKey, tenant.APIKeyHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	claims := TokenClaims{
		TenantID: tenant.ID,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, errors.New("error al generar token")
	}

	return &TokenResult{Token: token, ExpiresAt: expiresAt, TenantID: tenant.ID, UserID: userID}, nil
}

func generateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "flk_" + hex.EncodeToString(bytes), nil
}

// HashSecret hashes a secret using bcrypt
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifySecret compares a secret with a hash
func VerifySecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
