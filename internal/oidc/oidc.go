package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/Dev-Ole007/Ipaps/pkg/middleware"
)

// FirebaseIssuer returns the OIDC issuer for Firebase ID tokens of a project.
func FirebaseIssuer(projectID string) string {
	return "https://securetoken.google.com/" + projectID
}

// ProjectIDFromCredentials extracts the project id from a Firebase service
// account credentials file. Only project_id is read; the service never signs
// anything with the key material.
func ProjectIDFromCredentials(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	var cred struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(b, &cred); err != nil {
		return "", fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if cred.ProjectID == "" {
		return "", fmt.Errorf("credentials %s: missing project_id", path)
	}
	return cred.ProjectID, nil
}

// Verifier validates bearer tokens against the identity provider discovered
// from the issuer URL.
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider at issuer and verifies tokens for the
// given audience.
func NewVerifier(ctx context.Context, issuer, audience string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: audience})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// Verify checks the raw token and returns its claims carrier.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
