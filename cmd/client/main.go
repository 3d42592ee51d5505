package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"passage/internal/client"
)

const requestTimeout = 15 * time.Second

func main() {
	serverURL := getEnv("PASSAGE_SERVER", "http://localhost:8080")

	store, err := client.DefaultTokenStore()
	if err != nil {
		log.Fatalf("Failed to initialize token storage: %v", err)
	}

	session := client.NewSession(client.NewAPI(serverURL), store)
	defer session.Close()

	// Restore a previous session if a token was stored.
	startCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	session.Start(startCtx)
	snap, _ := session.Await(startCtx)
	cancel()
	printState(snap)

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Commands: register, login, profile, whoami, logout, exit")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(line) {
		case "register":
			doRegister(session, reader)
		case "login":
			doLogin(session, reader)
		case "profile", "whoami":
			printState(session.Current())
		case "logout":
			session.Logout()
			fmt.Println("Logged out")
		case "exit", "quit":
			return
		case "":
		default:
			fmt.Println("Unknown command")
		}
	}
}

func doRegister(session *client.Session, reader *bufio.Reader) {
	req := client.RegisterRequest{
		Name:        prompt(reader, "Name"),
		Email:       prompt(reader, "Email"),
		Password:    prompt(reader, "Password"),
		DateOfBirth: prompt(reader, "Date of birth (YYYY-MM-DD)"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session.Register(ctx, req)
	snap, err := session.Await(ctx)
	if err != nil {
		fmt.Printf("Registration did not settle: %v\n", err)
		return
	}
	printState(snap)
}

func doLogin(session *client.Session, reader *bufio.Reader) {
	email := prompt(reader, "Email")
	password := prompt(reader, "Password")

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session.Login(ctx, email, password)
	snap, err := session.Await(ctx)
	if err != nil {
		fmt.Printf("Login did not settle: %v\n", err)
		return
	}
	printState(snap)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func printState(snap client.Snapshot) {
	switch snap.State {
	case client.StateAuthenticated:
		fmt.Printf("Signed in as %s <%s>\n", snap.User.Name, snap.User.Email)
	default:
		if snap.Err != "" {
			fmt.Printf("Not signed in: %s\n", snap.Err)
		} else {
			fmt.Println("Not signed in")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
