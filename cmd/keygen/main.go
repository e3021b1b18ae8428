// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/manufacto/booking/internal/auth"
)

func main() {
	privatePath := flag.String("private", "keys/private.pem", "ES256 private key output path")
	publicPath := flag.String("public", "keys/public.pem", "ES256 public key output path")
	flag.Parse()

	for _, path := range []string{*privatePath, *publicPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			slog.Error("create key directory", "path", path, "error", err)
			os.Exit(1)
		}
	}

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		slog.Error("key generation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("key pair written", "private", *privatePath, "public", *publicPath)
}
