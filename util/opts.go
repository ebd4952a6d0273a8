package util

import (
	"fmt"
	"os"

	proto "github.com/cooldogedev/prism/protocol"
	"github.com/cooldogedev/prism/session"
	"github.com/cooldogedev/prism/transaction"
	"gopkg.in/yaml.v3"
)

type Opts struct {
	// Addr is the address to listen on.
	Addr string `yaml:"addr"`
	// Transport is the transport clients connect over: raknet, tcp, kcp, quic or spectral.
	Transport string `yaml:"transport"`

	// ServerName and ServerSubName are shown in the server list.
	ServerName    string `yaml:"server_name"`
	ServerSubName string `yaml:"server_sub_name"`
	MaxPlayers    int    `yaml:"max_players"`

	// PaletteDir is the directory holding a block_palette_<version>.nbt.gz file per anchor version.
	// Blocks are not translated between versions if it is empty.
	PaletteDir string `yaml:"palette_dir"`
	// Recipes is the path of the YAML file recipes are loaded from.
	Recipes string `yaml:"recipes"`
	// Ledger is the path of the SQLite database violations are recorded in. Violations are not recorded if
	// it is empty.
	Ledger string `yaml:"ledger"`

	// Compression is the batch compression announced to clients: flate, snappy or none.
	Compression string `yaml:"compression"`
	// CompressionThreshold is the minimum batch size clients compress.
	CompressionThreshold uint16 `yaml:"compression_threshold"`
	// QueueSize is the number of batches buffered per connection.
	QueueSize int `yaml:"queue_size"`
	// WorldQueueSize is the number of functions buffered by the world's execution loop.
	WorldQueueSize int `yaml:"world_queue_size"`

	Transaction transaction.Config `yaml:"transaction"`

	// APIAddr is the address the binary admin API listens on. It is disabled if empty.
	APIAddr string `yaml:"api_addr"`
	// HTTPAddr is the address the HTTP admin API listens on. It is disabled if empty.
	HTTPAddr string `yaml:"http_addr"`
	// Token is the secret admin clients have to present to authenticate.
	Token string `yaml:"token"`
}

func DefaultOpts() *Opts {
	return &Opts{
		Addr:                 ":19132",
		Transport:            "raknet",
		ServerName:           "prism",
		MaxPlayers:           100,
		Compression:          "flate",
		CompressionThreshold: 256,
		QueueSize:            64,
		WorldQueueSize:       1024,
		Transaction:          transaction.DefaultConfig(),
		HTTPAddr:             "127.0.0.1:8080",
	}
}

// LoadOpts reads the YAML file at path. Fields missing from the file keep their default value.
func LoadOpts(path string) (*Opts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOpts(data)
}

// ParseOpts ...
func ParseOpts(data []byte) (*Opts, error) {
	opts := DefaultOpts()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse opts: %w", err)
	}
	if _, err := proto.CompressionByName(opts.Compression); err != nil {
		return nil, err
	}
	return opts, nil
}

// SessionConfig returns the per connection settings described by the opts.
func (o *Opts) SessionConfig() (session.Config, error) {
	compression, err := proto.CompressionByName(o.Compression)
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		QueueSize:            o.QueueSize,
		Compression:          compression,
		CompressionThreshold: o.CompressionThreshold,
		Transaction:          o.Transaction,
	}, nil
}
