package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"weave-server/pkg/storyflow"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    45 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the server is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	api := newAPIClient(client, cfg.APIBaseURL)
	if err := signIn(api); err != nil {
		fmt.Fprintf(os.Stderr, "Sign in failed: %v\n", err)
		os.Exit(1)
	}

	machine := storyflow.NewMachine(api)
	machine.SetAuthorized(true)

	genres, err := api.listGenres(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list genres: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, api, machine, genres),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// signIn prompts for credentials before the TUI starts. A missing account is
// registered on the spot.
func signIn(api *apiClient) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, err := readPassword(reader)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := api.Login(ctx, email, password); err == nil {
		return nil
	}

	fmt.Print("No session. Create an account? Enter a display name (blank to abort): ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("aborted")
	}

	if err := api.Register(ctx, email, name, password); err != nil {
		return err
	}
	_, err = api.Login(ctx, email, password)
	return err
}

func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode == http.StatusOK
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
