package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/auth"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/config"
)

// runToken implements "graylogic-osc token": it signs an API token with the
// configured JWT secret and writes it to out.
//
// Parameters:
//   - args: Command line arguments after "token"
//   - out: Where the token is written
//
// Returns:
//   - error: If flags, config or role are invalid
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "", "token subject, e.g. the operator or panel name")
	role := fs.String("role", string(auth.RoleViewer), "role: viewer or operator")
	ttl := fs.Duration("ttl", auth.DefaultTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	if *subject == "" {
		return errors.New("-subject is required")
	}
	if *ttl <= 0 || *ttl > 365*24*time.Hour {
		return fmt.Errorf("-ttl %s out of range", *ttl)
	}

	r, err := auth.ParseRole(*role)
	if err != nil {
		return err
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token, err := auth.GenerateToken(*subject, r, cfg.Security.JWT.Secret, *ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
