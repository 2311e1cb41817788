package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CredentialRef names one catalog quota bucket. Slots are assigned refs so
// that concurrent slot queries spread across several app id/key pairs.
type CredentialRef string

const (
	RefOne   CredentialRef = "one"
	RefTwo   CredentialRef = "two"
	RefThree CredentialRef = "three"
	RefFour  CredentialRef = "four"
	RefFive  CredentialRef = "five"
	RefSix   CredentialRef = "six"
	RefSeven CredentialRef = "seven"
	RefEight CredentialRef = "eight"
	RefNine  CredentialRef = "nine"
	RefTen   CredentialRef = "ten"
)

// AllCredentialRefs lists every ref in table order.
var AllCredentialRefs = []CredentialRef{
	RefOne, RefTwo, RefThree, RefFour, RefFive,
	RefSix, RefSeven, RefEight, RefNine, RefTen,
}

// Credential is an Edamam application id/key pair.
type Credential struct {
	AppID  string `yaml:"app_id"`
	AppKey string `yaml:"app_key"`
}

// Credentials maps a ref to its credential.
type Credentials map[CredentialRef]Credential

// Lookup returns the credential for ref. When the ref itself is not configured
// the first configured ref in table order is used instead, so a deployment with
// a single key still serves every slot.
func (c Credentials) Lookup(ref CredentialRef) (Credential, bool) {
	if cred, ok := c[ref]; ok {
		return cred, true
	}
	for _, r := range AllCredentialRefs {
		if cred, ok := c[r]; ok {
			return cred, true
		}
	}
	return Credential{}, false
}

// CredentialsFromEnv reads EDAMAM_API_ID_<REF> / EDAMAM_API_KEY_<REF> pairs.
func CredentialsFromEnv() Credentials {
	creds := Credentials{}
	for _, ref := range AllCredentialRefs {
		suffix := strings.ToUpper(string(ref))
		id := os.Getenv("EDAMAM_API_ID_" + suffix)
		key := os.Getenv("EDAMAM_API_KEY_" + suffix)
		if id == "" || key == "" {
			continue
		}
		creds[ref] = Credential{AppID: id, AppKey: key}
	}
	return creds
}

// LoadCredentialsFile reads a YAML document of the form
//
//	one: {app_id: "...", app_key: "..."}
//	two: {app_id: "...", app_key: "..."}
func LoadCredentialsFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	raw := map[string]Credential{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	known := make(map[CredentialRef]bool, len(AllCredentialRefs))
	for _, r := range AllCredentialRefs {
		known[r] = true
	}

	creds := Credentials{}
	for name, cred := range raw {
		ref := CredentialRef(strings.ToLower(strings.TrimSpace(name)))
		if !known[ref] {
			return nil, fmt.Errorf("unknown credential ref %q in %s", name, path)
		}
		if cred.AppID == "" || cred.AppKey == "" {
			return nil, fmt.Errorf("credential %q in %s is missing app_id or app_key", name, path)
		}
		creds[ref] = cred
	}
	return creds, nil
}
