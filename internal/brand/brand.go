// Package brand provides centralized naming and path constants for iptx.
// This makes it easy to fork or rebrand the tool by changing brand.json.
//
// The identity is loaded from brand.json at compile time via go:embed so
// that other tools (scripts, packaging) can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information.
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Vendor           string `json:"vendor"`
	Repository       string `json:"repository"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultRunDir    string `json:"defaultRunDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
	LockFileName     string `json:"lockFileName"`
}

var b Brand

// Exported identity values, initialized from brand.json.
var (
	Name             string
	LowerName        string
	Vendor           string
	Repository       string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultRunDir    string
	BinaryName       string
	ConfigFileName   string
	LockFileName     string

	// DefaultConfigPath is where iptx looks for its config when no
	// -config flag is given.
	DefaultConfigPath string

	// DefaultLockPath is the well-known advisory lock file shared by
	// every process serializing xtables invocations on this host.
	DefaultLockPath string
)

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Vendor = b.Vendor
	Repository = b.Repository
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultRunDir = b.DefaultRunDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	LockFileName = b.LockFileName

	DefaultConfigPath = filepath.Join(DefaultConfigDir, ConfigFileName)
	DefaultLockPath = filepath.Join(DefaultRunDir, LockFileName)
}
