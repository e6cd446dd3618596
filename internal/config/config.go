package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pelletier/go-toml"

	"github.com/screa/create2-vanity-miner/internal/crypto"
	"github.com/screa/create2-vanity-miner/pkg/types"
)

// Errors
var (
	ErrNoDeployer     = errors.New("must specify --deployer")
	ErrNoSaltSource   = errors.New("must specify either --sender or --initial-salt")
	ErrNoInitCode     = errors.New("must specify --init-code-hash, --bytecode or --bytecode-file")
	ErrInvalidZeros   = errors.New("--zeros must be between 1 and 40")
	ErrInvalidWorkers = errors.New("--workers must be at least 1")
	ErrUnknownKey     = errors.New("unknown configuration key")
)

// Defaults
const (
	DefaultZeros     = 12
	DefaultNumRounds = 100_000
	DefaultRoundSize = 1_000_000
	DefaultWorkers   = 16
)

// Config holds the application configuration. The toml keys match the flag
// names.
type Config struct {
	ConfigFile   string `toml:"-"`
	Deployer     string `toml:"deployer"`
	Sender       string `toml:"sender"`
	InitialSalt  string `toml:"initial-salt"`
	InitCodeHash string `toml:"init-code-hash"`
	Bytecode     string `toml:"bytecode"`
	BytecodeFile string `toml:"bytecode-file"`
	Zeros        int    `toml:"zeros"` // only drives the time estimates
	NumRounds    uint64 `toml:"num-rounds"`
	RoundSize    uint64 `toml:"round-size"`
	Workers      int    `toml:"workers"`
	Verbose      bool   `toml:"verbose"`
	LogFile      string `toml:"log-file"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Deployer:  crypto.FactoryAddress,
		Zeros:     DefaultZeros,
		NumRounds: DefaultNumRounds,
		RoundSize: DefaultRoundSize,
		Workers:   DefaultWorkers,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Deployer == "" {
		return ErrNoDeployer
	}
	if c.Sender == "" && c.InitialSalt == "" {
		return ErrNoSaltSource
	}
	if c.InitCodeHash == "" && c.Bytecode == "" && c.BytecodeFile == "" {
		return ErrNoInitCode
	}
	if c.Zeros < 1 || c.Zeros > 2*common.AddressLength {
		return ErrInvalidZeros
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	return nil
}

// ApplyFile loads the TOML file at path and copies every key it sets into c,
// except keys for which changed returns true. changed may be nil.
func (c *Config) ApplyFile(path string, changed func(key string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	var file Config
	if err := tree.Unmarshal(&file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fields := map[string]func(){
		"deployer":       func() { c.Deployer = file.Deployer },
		"sender":         func() { c.Sender = file.Sender },
		"initial-salt":   func() { c.InitialSalt = file.InitialSalt },
		"init-code-hash": func() { c.InitCodeHash = file.InitCodeHash },
		"bytecode":       func() { c.Bytecode = file.Bytecode },
		"bytecode-file":  func() { c.BytecodeFile = file.BytecodeFile },
		"zeros":          func() { c.Zeros = file.Zeros },
		"num-rounds":     func() { c.NumRounds = file.NumRounds },
		"round-size":     func() { c.RoundSize = file.RoundSize },
		"workers":        func() { c.Workers = file.Workers },
		"verbose":        func() { c.Verbose = file.Verbose },
		"log-file":       func() { c.LogFile = file.LogFile },
	}

	keys := tree.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		apply, ok := fields[key]
		if !ok {
			return fmt.Errorf("%s: %w %q", path, ErrUnknownKey, key)
		}
		if changed != nil && changed(key) {
			continue
		}
		apply()
	}
	c.ConfigFile = path
	return nil
}

// Params builds the search parameters from the configuration.
// Validate should be called first.
func (c *Config) Params() (types.SearchParameters, error) {
	deployer, err := crypto.ParseAddress(c.Deployer)
	if err != nil {
		return types.SearchParameters{}, fmt.Errorf("deployer: %w", err)
	}
	salt, err := c.GetInitialSalt()
	if err != nil {
		return types.SearchParameters{}, err
	}
	initCodeHash, err := c.GetInitCodeHash()
	if err != nil {
		return types.SearchParameters{}, err
	}

	return types.SearchParameters{
		Deployer:     deployer,
		InitialSalt:  *salt,
		InitCodeHash: initCodeHash,
		RoundSize:    c.RoundSize,
		NumRounds:    c.NumRounds,
	}, nil
}

// GetInitialSalt returns --initial-salt if set, otherwise the sender in the
// upper 20 bytes followed by 12 zero bytes.
func (c *Config) GetInitialSalt() (*uint256.Int, error) {
	if c.InitialSalt != "" {
		salt, err := crypto.ParseSalt(c.InitialSalt)
		if err != nil {
			return nil, fmt.Errorf("initial salt: %w", err)
		}
		return salt, nil
	}
	sender, err := crypto.ParseAddress(c.Sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	return crypto.SenderSalt(sender), nil
}

// GetInitCodeHash returns --init-code-hash if set, otherwise the keccak256
// of the bytecode.
func (c *Config) GetInitCodeHash() (common.Hash, error) {
	if c.InitCodeHash != "" {
		h, err := crypto.ParseHash(c.InitCodeHash)
		if err != nil {
			return common.Hash{}, fmt.Errorf("init code hash: %w", err)
		}
		return h, nil
	}
	code, err := c.GetBytecode()
	if err != nil {
		return common.Hash{}, fmt.Errorf("bytecode: %w", err)
	}
	return crypto.Keccak256(code), nil
}

// GetBytecode returns the bytecode to use for address calculation
func (c *Config) GetBytecode() ([]byte, error) {
	// Check if bytecode file is specified
	if c.BytecodeFile != "" {
		return readBytecodeFromFile(c.BytecodeFile)
	}

	if c.Bytecode != "" {
		return crypto.HexToBytes(c.Bytecode)
	}

	// This should not happen if validation passes
	return nil, ErrNoInitCode
}

// readBytecodeFromFile reads bytecode from a file
func readBytecodeFromFile(filename string) ([]byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(string(content))
	return crypto.HexToBytes(code)
}
