// Package config builds the service options from defaults, an optional JSON
// file, command-line flags and environment variables, in that order of
// increasing priority.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// ResultHostname is the public base URL of the service; uploaded files
	// are served below it.
	ResultHostname string `json:"base_url"`

	// FilePath is the path to the JSON registry file.
	FilePath string `json:"file_storage_path"`

	// DatabaseDSN selects the PostgreSQL registry when set.
	DatabaseDSN string `json:"database_dsn"`

	EnablePprof bool `json:"enable_pprof"`
	EnableHTTPS bool `json:"enable_https"`

	// TrustedSubnet is the CIDR allowed to read internal stats.
	TrustedSubnet string `json:"trusted_subnet"`

	// GRPCPort is the gRPC listening port; 0 disables the gRPC server.
	GRPCPort int `json:"grpc_port"`

	// BlobDir is where uploaded files are stored.
	BlobDir string `json:"blob_dir"`

	// JWTSecret verifies identity tokens.
	JWTSecret string `json:"jwt_secret"`

	LogLevel       string `json:"log_level"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`

	// Config is the path of the JSON file the options were read from.
	Config string `json:"-"`
}

// Defaults returns the options used when nothing else is configured.
func Defaults() Options {
	return Options{
		Port:           "localhost:8080",
		ResultHostname: "http://localhost:8080",
		GRPCPort:       3200,
		BlobDir:        "uploads",
		LogLevel:       "info",
		MaxUploadBytes: 10 << 20,
	}
}

// Parse reads os.Args and the process environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:], os.Getenv)
}

// ParseArgs is Parse over explicit arguments and environment.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	defaults := Defaults()
	flagged := defaults

	fs := flag.NewFlagSet("slugshare", flag.ContinueOnError)
	fs.StringVar(&flagged.Port, "a", defaults.Port, "run on ip:port server")
	fs.StringVar(&flagged.ResultHostname, "b", defaults.ResultHostname, "public base url")
	fs.StringVar(&flagged.FilePath, "f", defaults.FilePath, "path to registry file")
	fs.StringVar(&flagged.DatabaseDSN, "d", defaults.DatabaseDSN, "db address")
	fs.BoolVar(&flagged.EnablePprof, "p", defaults.EnablePprof, "enable pprof")
	fs.BoolVar(&flagged.EnableHTTPS, "s", defaults.EnableHTTPS, "enable https")
	fs.StringVar(&flagged.TrustedSubnet, "t", defaults.TrustedSubnet, "trusted subnet (CIDR)")
	fs.IntVar(&flagged.GRPCPort, "g", defaults.GRPCPort, "grpc port, 0 disables grpc")
	fs.StringVar(&flagged.BlobDir, "u", defaults.BlobDir, "directory for uploaded files")
	fs.StringVar(&flagged.JWTSecret, "j", defaults.JWTSecret, "jwt signing secret")
	fs.StringVar(&flagged.LogLevel, "l", defaults.LogLevel, "log level")
	fs.Int64Var(&flagged.MaxUploadBytes, "m", defaults.MaxUploadBytes, "max upload size in bytes")
	fs.StringVar(&flagged.Config, "c", "", "path to json config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	options := defaults

	options.Config = flagged.Config
	if v := getenv("CONFIG"); v != "" {
		options.Config = v
	}
	if options.Config != "" {
		if err := loadFile(options.Config, &options); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			options.Port = flagged.Port
		case "b":
			options.ResultHostname = flagged.ResultHostname
		case "f":
			options.FilePath = flagged.FilePath
		case "d":
			options.DatabaseDSN = flagged.DatabaseDSN
		case "p":
			options.EnablePprof = flagged.EnablePprof
		case "s":
			options.EnableHTTPS = flagged.EnableHTTPS
		case "t":
			options.TrustedSubnet = flagged.TrustedSubnet
		case "g":
			options.GRPCPort = flagged.GRPCPort
		case "u":
			options.BlobDir = flagged.BlobDir
		case "j":
			options.JWTSecret = flagged.JWTSecret
		case "l":
			options.LogLevel = flagged.LogLevel
		case "m":
			options.MaxUploadBytes = flagged.MaxUploadBytes
		}
	})

	if err := applyEnv(&options, getenv); err != nil {
		return nil, err
	}

	return &options, nil
}

func loadFile(path string, options *Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	config := options.Config
	if err := json.Unmarshal(content, options); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	options.Config = config
	return nil
}

func applyEnv(options *Options, getenv func(string) string) error {
	texts := map[string]*string{
		"SERVER_ADDRESS":    &options.Port,
		"BASE_URL":          &options.ResultHostname,
		"FILE_STORAGE_PATH": &options.FilePath,
		"DATABASE_DSN":      &options.DatabaseDSN,
		"TRUSTED_SUBNET":    &options.TrustedSubnet,
		"BLOB_DIR":          &options.BlobDir,
		"JWT_SECRET":        &options.JWTSecret,
		"LOG_LEVEL":         &options.LogLevel,
	}
	for name, dst := range texts {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	var errs []error

	bools := map[string]*bool{
		"ENABLE_HTTPS": &options.EnableHTTPS,
		"ENABLE_PPROF": &options.EnablePprof,
	}
	for name, dst := range bools {
		if v := getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			*dst = b
		}
	}

	if v := getenv("GRPC_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GRPC_PORT: %w", err))
		} else {
			options.GRPCPort = port
		}
	}

	if v := getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		} else {
			options.MaxUploadBytes = n
		}
	}

	return errors.Join(errs...)
}
