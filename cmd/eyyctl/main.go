package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/api"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/config"
	"github.com/AndrewJAS07/Ang-Pagtatapos/internal/session"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profile := session.Resolve(*profileFlag)
	if err := session.ValidateName(profile); err != nil {
		fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "login":
		runLogin(profile, args[1:])
	case "logout":
		runLogout(profile)
	case "status":
		runStatus(profile)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: eyyctl [--profile name] <login|logout|status>")
	fmt.Fprintln(os.Stderr, "  login --email you@example.com --password secret")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func runLogin(profile string, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadOrDefault(session.ConfigPath())
	if err != nil {
		fatal(err)
	}

	client := api.NewClient(cfg.Server.APIURL, session.StaticTokenSource(""), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := client.Login(ctx, *email, *password)
	if err != nil {
		fatal(err)
	}

	if err := session.SaveToken(profile, res.Token); err != nil {
		fatal(err)
	}
	if err := session.SaveIdentity(profile, session.Identity{UserID: res.UserID, Role: res.Role}); err != nil {
		fatal(err)
	}
	fmt.Printf("logged in as %s (%s) on profile %q\n", *email, res.Role, profile)
}

func runLogout(profile string) {
	if err := session.ClearToken(profile); err != nil {
		fatal(err)
	}
	fmt.Printf("logged out of profile %q\n", profile)
}

func runStatus(profile string) {
	tokens := session.NewFileTokenSource(profile)
	id := session.LoadIdentity(profile)

	fmt.Printf("profile:  %s\n", profile)
	if tokens.Token() == "" {
		fmt.Println("auth:     signed out")
	} else {
		fmt.Println("auth:     signed in")
	}
	fmt.Printf("user:     %s\n", id.StoreKey())
	fmt.Printf("role:     %s\n", id.Role)
}
