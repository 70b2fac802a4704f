package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mux-livestream/internal/platform/config"
	"mux-livestream/internal/platform/logger"
	"mux-livestream/internal/settings"
	"mux-livestream/internal/storage"
)

const usage = `Usage: migrate <command>

Commands:
  up                 create the stream table
  down               drop the stream table and all records
  set-secret VALUE   store the Mux webhook signing secret in SETTINGS_FILE
  sign FILE          print a Mux-Signature header value for the body in FILE
                     (use - for stdin), signed with the configured secret`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	_ = config.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, "text")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd := os.Args[1]; cmd {
	case "up", "down":
		store, closeStore, err := storage.Open(ctx, storage.Options{
			Driver:        cfg.StoreDriver,
			TablePrefix:   cfg.TablePrefix,
			SQLitePath:    cfg.SQLitePath,
			DatabaseURL:   cfg.DatabaseURL,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("open store failed", "driver", cfg.StoreDriver, "error", err)
			os.Exit(1)
		}
		if cmd == "up" {
			err = store.CreateTable(ctx)
		} else {
			err = store.DropTable(ctx)
		}
		if cerr := closeStore(); cerr != nil {
			log.Error("close store failed", "error", cerr)
		}
		if err != nil {
			log.Error("migration failed", "command", cmd, "error", err)
			os.Exit(1)
		}
		log.Info("migration complete", "command", cmd, "driver", cfg.StoreDriver)

	case "set-secret":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		s, err := settings.Load(cfg.SettingsFile)
		if err != nil {
			log.Error("load settings failed", "error", err)
			os.Exit(1)
		}
		s.WebhookSecret = os.Args[2]
		if err := settings.Save(cfg.SettingsFile, s); err != nil {
			log.Error("save settings failed", "error", err)
			os.Exit(1)
		}
		if settings.Sanitize(os.Args[2]) == "" {
			log.Warn("webhook secret is empty after sanitizing; all webhook requests will be rejected")
		}
		log.Info("webhook secret saved", "file", cfg.SettingsFile)

	case "sign":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		secrets, err := settings.NewSource(cfg.SettingsFile, cfg.WebhookSecret)
		if err != nil {
			log.Error("load settings failed", "error", err)
			os.Exit(1)
		}
		header, err := signFile(os.Args[2], os.Stdin, secrets, time.Now())
		if err != nil {
			log.Error("sign failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(header)

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}
