// Interactive text client against the Live API. Reads lines from stdin,
// sends each as a complete user turn, prints the model's text replies.
// Useful for checking a deployment's API key, model and tool wiring without
// an audio frontend.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/room4-2/openlive/config"
	"github.com/room4-2/openlive/gemini"
	"github.com/room4-2/openlive/live"
	"github.com/room4-2/openlive/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	proxy, err := gemini.NewProxy(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create proxy: %v", err)
	}
	defer proxy.Close()

	setup := cfg.LiveSetup(session.DefaultSystemPrompt, nil)
	// Text in, text out for this client
	setup.GenerationConfig = map[string]any{
		"response_modalities": []string{"TEXT"},
	}

	ctx := context.Background()
	if err := proxy.Setup(ctx, setup); err != nil {
		log.Fatalf("Failed to setup session: %v", err)
	}

	done := make(chan struct{}, 1)
	proxy.OnText = func(text string) {
		fmt.Print(text)
	}
	proxy.OnComplete = func() {
		fmt.Println()
		done <- struct{}{}
	}
	proxy.OnToolCall = func(calls []live.FunctionCall) {
		for _, fc := range calls {
			fmt.Printf("[tool call: %s]\n", fc.Name)
		}
	}
	proxy.OnError = func(err error) {
		log.Printf("Proxy error: %v", err)
		os.Exit(1)
	}

	proxy.StartReceiving(ctx)

	fmt.Println("Type a message and press enter (ctrl-D to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := proxy.SendText(line); err != nil {
			log.Fatalf("Send failed: %v", err)
		}
		<-done
	}
}
