// Package vapid resolves the process-wide VAPID signing identity.
//
// The public key must stay stable across restarts: every browser subscription
// is bound to it, so a regenerated key silently invalidates all of them. Keys
// come from configuration when present; otherwise they are read from a key
// file, and generated into that file exactly once.
package vapid

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"habitflow-backend/pkg/atomicfile"

	webpushgo "github.com/SherClockHolmes/webpush-go"
)

// KeyPair is a base64url-encoded P-256 key pair
type KeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// Generate creates a fresh key pair
func Generate() (KeyPair, error) {
	privateKey, publicKey, err := webpushgo.GenerateVAPIDKeys()
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate VAPID keys: %w", err)
	}
	return KeyPair{PublicKey: publicKey, PrivateKey: privateKey}, nil
}

// Resolve returns the configured pair when both halves are set, else LoadOrCreate(path)
func Resolve(publicKey, privateKey, path string) (KeyPair, error) {
	if publicKey != "" && privateKey != "" {
		return KeyPair{PublicKey: publicKey, PrivateKey: privateKey}, nil
	}
	return LoadOrCreate(path)
}

// LoadOrCreate reads the key file at path, generating and persisting a new pair if it does not exist
func LoadOrCreate(path string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var kp KeyPair
		if err := json.Unmarshal(data, &kp); err != nil {
			return KeyPair{}, fmt.Errorf("failed to parse VAPID key file %s: %w", path, err)
		}
		if kp.PublicKey == "" || kp.PrivateKey == "" {
			return KeyPair{}, fmt.Errorf("VAPID key file %s is missing a key", path)
		}
		return kp, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return KeyPair{}, fmt.Errorf("failed to read VAPID key file %s: %w", path, err)
	}

	kp, err := Generate()
	if err != nil {
		return KeyPair{}, err
	}

	data, err = json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to marshal VAPID keys: %w", err)
	}
	if err := atomicfile.WriteFile(path, data, 0o600); err != nil {
		return KeyPair{}, fmt.Errorf("failed to persist VAPID keys: %w", err)
	}

	log.Printf("[VAPID] Generated new key pair and saved it to %s", path)
	return kp, nil
}
