package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pstuifzand/chunkview/internal/app"
	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/socket"
)

func main() {
	logFile, err := os.Create("chunkview.log")
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	debug := flag.Bool("debug", false, "Enable debug mode (shows key events and rebuilds in status)")
	before := flag.String("before", "", "Older version of the document to diff against")
	configPath := flag.String("config", "", "Config file (default ~/.config/chunkview/config.toml)")
	send := flag.String("send", "", "Send a command (e.g. \"fold el:e2\") to a running chunkview instance")
	state := flag.Bool("state", false, "Print the folding state of a running chunkview instance")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chunkview [options] <document.json>\n       chunkview -send <command>\n       chunkview -state\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *send != "" || *state {
		if err := sendRemote(*send, *state); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	var cfg *config.Config
	if *configPath != "" {
		if cfg, err = config.LoadFromFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	application, err := app.NewApp(app.Options{
		DocPath:    args[0],
		BeforePath: *before,
		Config:     cfg,
		Remote:     true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		application.SetDebugMode(true)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// sendRemote sends a command or a state query to a running instance
func sendRemote(command string, queryState bool) error {
	socketPath, pid, err := socket.FindRunningInstance()
	if err != nil {
		return fmt.Errorf("no running chunkview instance found: %w", err)
	}
	log.Printf("Found running instance at PID %d: %s", pid, socketPath)

	client, err := socket.NewClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	var response *socket.Response
	if queryState {
		response, err = client.QueryState()
	} else {
		response, err = client.SendCommand(strings.TrimSpace(command))
	}
	if err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	if !response.Success {
		return fmt.Errorf("server error: %s", response.Message)
	}

	if !queryState {
		fmt.Println(response.Message)
		return nil
	}
	fmt.Printf("visible: %s\n", strings.Join(response.Visible, " "))
	for _, id := range response.Visible {
		if children, ok := response.Groups[id]; ok {
			fmt.Printf("%s: %s\n", id, strings.Join(children, " "))
		}
	}
	return nil
}
