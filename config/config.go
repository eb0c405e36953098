// Package config loads and validates the YAML configuration file the
// core consumes as an external collaborator (spec.md §6): the asset
// universe, the companion tokens, the locked collateral amount, and the
// well-known control keypair. The core never writes this file; only the
// CLI's initconfig path does.
package config

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightninglabs/elopt/asset"
	"github.com/lightninglabs/elopt/olterrors"
	"gopkg.in/yaml.v3"
)

// DefaultControlPrivKeyWIF and DefaultControlPubKeyHex are the
// canonical well-known control keypair of spec.md §6. Any instance that
// reuses these values is interoperable with any other.
const (
	DefaultControlPrivKeyWIF  = "cVt4o7BGAig1UXywgGSmARhxMdzP5qvQsxKkSsc1XEkw3tDTQFpy"
	DefaultControlPubKeyHex   = "039b6347398505f5ec93826dc61c19f47c66c0283ee9be980e29ce325a0f4679ef"
	defaultConfigFilename     = "elopt.yaml"
	defaultAppDirName         = "elopt"
)

// Config is the on-disk shape of the YAML configuration file (spec.md
// §6). All asset fields are hex-encoded 32-byte asset IDs in display
// (reversed) byte order, matching the teacher's convention for
// chainhash-style identifiers.
type Config struct {
	LockAsset         string `yaml:"lock_asset"`
	ClaimAsset        string `yaml:"claim_asset"`
	OptToken          string `yaml:"opt_token"`
	BeneToken         string `yaml:"bene_token"`
	LockedAssetAmount uint64 `yaml:"locked_asset_amount"`
	ControlPubKey     string `yaml:"control_pubkey"`
	ControlPrivKey    string `yaml:"control_privkey"`
	BTCAsset          string `yaml:"btc_asset"`
}

// Default returns a Config populated with the well-known control
// keypair and zero-valued asset fields, for use by `initconfig`.
func Default() *Config {
	return &Config{
		ControlPubKey:  DefaultControlPubKeyHex,
		ControlPrivKey: DefaultControlPrivKeyWIF,
	}
}

// DefaultPath returns the default configuration file location under the
// user's application data directory, in the teacher's
// btcutil.AppDataDir convention (cmd/lncli/main.go's defaultConfigPath).
func DefaultPath() string {
	return filepath.Join(btcutil.AppDataDir(defaultAppDirName, false), defaultConfigFilename)
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, olterrors.New(olterrors.ConfigInvalid, "config.Load", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, olterrors.New(olterrors.ConfigInvalid, "config.Load", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as
// needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return olterrors.New(olterrors.ConfigInvalid, "config.Save", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return olterrors.New(olterrors.ConfigInvalid, "config.Save", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return olterrors.New(olterrors.ConfigInvalid, "config.Save", err)
	}
	return nil
}

// Validate checks that every field parses as the type the core expects,
// returning ConfigInvalid on the first failure (spec.md §7).
func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		val  string
	}{
		{"lock_asset", c.LockAsset},
		{"claim_asset", c.ClaimAsset},
		{"opt_token", c.OptToken},
		{"bene_token", c.BeneToken},
		{"btc_asset", c.BTCAsset},
	} {
		if _, err := asset.IDFromHex(f.val); err != nil {
			return olterrors.New(olterrors.ConfigInvalid, "config.Validate", errBadAssetField(f.name, err))
		}
	}

	if _, _, err := c.ControlKeyPair(); err != nil {
		return olterrors.New(olterrors.ConfigInvalid, "config.Validate", err)
	}

	return nil
}

// ControlKeyPair decodes the configured control keypair: the WIF-encoded
// private key and the compressed public key, returning an error if the
// private key's derived pubkey disagrees with the configured one (spec.md
// §8 invariant 6).
func (c *Config) ControlKeyPair() (*btcec.PrivateKey, *btcec.PublicKey, error) {
	wif, err := btcutil.DecodeWIF(c.ControlPrivKey)
	if err != nil {
		return nil, nil, errBadControlKey("control_privkey", err)
	}
	priv := wif.PrivKey

	pubBytes, err := parseHexPubKey(c.ControlPubKey)
	if err != nil {
		return nil, nil, errBadControlKey("control_pubkey", err)
	}
	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return nil, nil, errBadControlKey("control_pubkey", err)
	}

	if !priv.PubKey().IsEqual(pub) {
		return nil, nil, errControlKeyMismatch()
	}

	return priv, pub, nil
}

// LockedParams builds the locked-side asset.Params from the
// configuration.
func (c *Config) LockedParams() (asset.Params, error) {
	lockID, err := asset.IDFromHex(c.LockAsset)
	if err != nil {
		return asset.Params{}, err
	}
	beneID, err := asset.IDFromHex(c.BeneToken)
	if err != nil {
		return asset.Params{}, err
	}
	return asset.New(lockID, beneID, c.LockedAssetAmount), nil
}

// ClaimParams builds the claim-side asset.Params from the configuration
// and a per-invocation strike amount in satoshis (spec.md §6).
func (c *Config) ClaimParams(strikeSats uint64) (asset.Params, error) {
	claimID, err := asset.IDFromHex(c.ClaimAsset)
	if err != nil {
		return asset.Params{}, err
	}
	optID, err := asset.IDFromHex(c.OptToken)
	if err != nil {
		return asset.Params{}, err
	}
	return asset.New(claimID, optID, strikeSats), nil
}

func parseHexPubKey(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

type badAssetFieldError struct {
	field string
	cause error
}

func (e badAssetFieldError) Error() string {
	return "config: invalid asset field " + e.field + ": " + e.cause.Error()
}
func (e badAssetFieldError) Unwrap() error { return e.cause }
func errBadAssetField(field string, cause error) error {
	return badAssetFieldError{field: field, cause: cause}
}

type badControlKeyError struct {
	field string
	cause error
}

func (e badControlKeyError) Error() string {
	return "config: invalid " + e.field + ": " + e.cause.Error()
}
func (e badControlKeyError) Unwrap() error { return e.cause }
func errBadControlKey(field string, cause error) error {
	return badControlKeyError{field: field, cause: cause}
}

type controlKeyMismatchError struct{}

func (controlKeyMismatchError) Error() string {
	return "config: control_pubkey does not match the public key derived from control_privkey"
}
func errControlKeyMismatch() error { return controlKeyMismatchError{} }
