// Command admin runs one-off operator tasks against the configured store.
//
//	admin indexes              create the unique indexes
//	admin token -email a@b.c   print a session token for scripting
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"marketplace-admin/internal/core/auth"
	"marketplace-admin/internal/core/config"
	"marketplace-admin/internal/core/database"
	"marketplace-admin/internal/core/logger"
	"marketplace-admin/internal/domain"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <indexes|token> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)

	switch os.Args[1] {
	case "indexes":
		err = runIndexes(cfg, log)
	case "token":
		err = runToken(cfg, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Error("admin "+os.Args[1]+" failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

func runIndexes(cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := database.Open(ctx, database.Opts{
		Driver:     cfg.Mongo.Driver,
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		TimeoutSec: cfg.Mongo.TimeoutSec,
	}, log)
	if err != nil {
		return errors.Wrap(err, "store open")
	}
	defer st.Close(context.Background())

	if err := database.EnsureIndexes(ctx, st, domain.Catalog()); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}
	for _, r := range domain.Catalog() {
		if f := r.UniqueFields(); len(f) > 0 {
			log.Info("unique index ready", zap.String("collection", r.Collection), zap.Strings("fields", f))
		}
	}
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	email := fs.String("email", "", "identity email (required)")
	name := fs.String("name", "", "display name")
	ttl := fs.Duration("ttl", time.Duration(cfg.JWT.TTLMin)*time.Minute, "token lifetime")
	_ = fs.Parse(args)

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret is empty; set APP_JWT_SECRET")
	}
	j := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: *ttl}
	tok, err := j.Issue(auth.Identity{Email: *email, Name: *name})
	if err != nil {
		return errors.Wrap(err, "issue token")
	}
	fmt.Println(tok)
	return nil
}
