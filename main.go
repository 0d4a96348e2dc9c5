package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/app"
	"github.com/pstuifzand/treestate/internal/config"
	"github.com/pstuifzand/treestate/internal/socket"
)

func main() {
	logPath := flag.String("log", "treestate.log", "Log file path")
	configPath := flag.String("config", "", "Config file (default ~/.config/treestate/config.toml)")
	send := flag.String("send", "", "Send a JSON command to a running treestate instance")
	socketPath := flag.String("socket", "", "Socket path to listen on or send to")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Handle send command
	if *send != "" {
		if err := sendCommand(*socketPath, *send); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var filePath string
	if args := flag.Args(); len(args) > 0 {
		filePath = args[0]
	}
	// filePath will be empty if no argument provided, which serves an in-memory tree

	application, err := app.NewApp(filePath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := application.Listen(*socketPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// sendCommand sends one JSON encoded command to a running instance and
// prints the reply
func sendCommand(socketPath, raw string) error {
	var msg socket.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return fmt.Errorf("invalid command JSON: %w", err)
	}

	if socketPath == "" {
		path, pid, err := socket.FindRunningInstance()
		if err != nil {
			return fmt.Errorf("failed to locate instance: %w", err)
		}
		log.Printf("Found running instance at PID %d: %s", pid, path)
		socketPath = path
	}

	client, err := socket.NewClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	response, err := client.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	if !response.Success {
		return fmt.Errorf("server error: %s", response.Message)
	}

	if len(response.Data) > 0 {
		fmt.Println(string(response.Data))
	} else {
		fmt.Println(response.Message)
	}
	return nil
}
