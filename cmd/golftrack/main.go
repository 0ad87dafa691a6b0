package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/juandrep/golftrack/internal/api"
	"github.com/juandrep/golftrack/internal/config"
	"github.com/juandrep/golftrack/internal/db"
	"github.com/juandrep/golftrack/internal/store"
	"github.com/juandrep/golftrack/internal/ui"
)

func main() {
	printLogo()

	configPath, err := config.DefaultConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := firstTimeSetup(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Setup error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.SeedDemoData(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.Server.URL)
	st, err := store.New(database, client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Sign in when a server is configured. Failures are non-fatal;
	// everything keeps working locally.
	if cfg.Server.Enabled && cfg.Server.URL != "" {
		if err := signIn(st, client, cfg, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Server: %v (working offline)\n", err)
		}
	}

	p := tea.NewProgram(ui.NewModel(st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printLogo() {
	fmt.Println()
	fmt.Println("   ██████╗  ██████╗ ██╗     ███████╗████████╗██████╗  █████╗  ██████╗██╗  ██╗")
	fmt.Println("  ██╔════╝ ██╔═══██╗██║     ██╔════╝╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██║ ██╔╝")
	fmt.Println("  ██║  ███╗██║   ██║██║     █████╗     ██║   ██████╔╝███████║██║     █████╔╝ ")
	fmt.Println("  ██║   ██║██║   ██║██║     ██╔══╝     ██║   ██╔══██╗██╔══██║██║     ██╔═██╗ ")
	fmt.Println("  ╚██████╔╝╚██████╔╝███████╗██║        ██║   ██║  ██║██║  ██║╚██████╗██║  ██╗")
	fmt.Println("   ╚═════╝  ╚═════╝ ╚══════╝╚═╝        ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝")
	fmt.Println()
}

func firstTimeSetup(configPath string) error {
	fmt.Println("  Welcome to golftrack!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("  Sync server URL (leave empty to work offline):")
	fmt.Print("  > ")
	url, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	url = strings.TrimSpace(url)

	dbPath, err := config.DefaultDataPath()
	if err != nil {
		return err
	}
	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: dbPath},
		Server: config.ServerConfig{
			URL:     url,
			Enabled: url != "",
		},
	}
	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("  Configuration created!")
	fmt.Println("  Edit config.yaml to customize.")
	fmt.Println()
	return nil
}

func signIn(st *store.Store, client *api.Client, cfg *config.Config, configPath string) error {
	if err := client.Ping(); err != nil {
		return fmt.Errorf("server unreachable")
	}

	token := cfg.Server.Token
	if token == "" {
		var err error
		token, err = promptToken()
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}
		cfg.Server.Token = token
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}
	}
	if cfg.Server.UID == "" {
		return fmt.Errorf("no uid configured; set server.uid in config.yaml")
	}

	return st.SignIn(token, cfg.Server.UID)
}

func promptToken() (string, error) {
	fmt.Print("  Access token: ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		token, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(token)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	token, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(token), nil
}
