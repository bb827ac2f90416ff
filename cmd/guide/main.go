// Command guide runs the time-travel guide in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/time-guide/backend/internal/config"
	"github.com/zhouzirui/time-guide/backend/internal/model/chat"
	"github.com/zhouzirui/time-guide/backend/internal/model/event"
	"github.com/zhouzirui/time-guide/backend/internal/service/ai"
	chatService "github.com/zhouzirui/time-guide/backend/internal/service/chat"
	"github.com/zhouzirui/time-guide/backend/internal/service/timelog"
)

const banner = `
Guia de Viagens no Tempo (com Memória de Estado) iniciado!

Este guia lembra para qual evento você viajou. Tente o seguinte:

  1. Peça para ir a um evento: "quero ver o primeiro homem na lua" ou "me leve para o futuro em marte".
  2. Uma vez lá, pergunte: "onde estou?" ou "o que está acontecendo aqui?".
  3. Para retornar, peça para "voltar para o presente".
  4. Para encerrar o guia, digite: "sair".

Vamos começar sua aventura!
`

type guide interface {
	Respond(ctx context.Context, sessionID, message string, hooks *ai.Hooks) (ai.Reply, error)
	Locate(state chat.TravelState) (string, bool)
}

func main() {
	var (
		envFile = flag.String("env", ".env", "dotenv file to load")
		quiet   = flag.Bool("quiet", false, "hide tool progress lines")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("warning: failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.AI.Enabled() {
		log.Fatal("no LLM credentials configured: set ARK_API_KEY or OPENAI_API_KEY")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := event.NewMemoryStore(event.Seed())
	if err != nil {
		log.Fatalf("failed to load event log: %v", err)
	}
	timeline := timelog.NewService(store)

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize chat model: %v", err)
	}
	g, err := ai.NewGuide(chatModel, chatService.NewService(chatService.Options{}), timeline, ai.Options{
		MaxSteps:     cfg.AI.MaxSteps,
		HistoryLimit: cfg.AI.HistoryLimit,
		TurnTimeout:  cfg.AI.TurnTimeout,
	})
	if err != nil {
		log.Fatalf("failed to initialize guide: %v", err)
	}

	var status io.Writer = os.Stderr
	if *quiet {
		status = nil
	}
	if err := run(ctx, g, os.Stdin, os.Stdout, status); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("guide stopped: %v", err)
	}
}

// run reads one message per line until "sair", EOF or ctx ends. Progress
// lines go to status when it is non-nil.
func run(ctx context.Context, g guide, in io.Reader, out io.Writer, status io.Writer) error {
	fmt.Fprint(out, banner)

	hooks := &ai.Hooks{}
	if status != nil {
		hooks.OnThinking = func(int) {
			fmt.Fprintln(status, "🧠 Consultando a consciência galáctica...")
		}
		hooks.OnToolStart = func(name, _ string) {
			fmt.Fprintf(status, "↪ Usando a ferramenta: %s...\n", name)
		}
		hooks.OnToolEnd = func(name, _ string, _ error) {
			fmt.Fprintf(status, "✔ Ferramenta %s finalizada.\n", name)
		}
	}

	scanner := bufio.NewScanner(in)
	sessionID := chatService.NewSessionID()
	prefix := "🏠Presente"

	for {
		fmt.Fprintf(out, "\n[%s] Você: ", prefix)
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "sair") {
			fmt.Fprintln(out, "\nGuia: Encerrando a simulação de viagem no tempo. Até a próxima aventura!")
			return nil
		}
		if input == "" {
			continue
		}

		reply, err := g.Respond(ctx, sessionID, input, hooks)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(out, "Erro ao processar a entrada: %v\n", err)
			continue
		}
		sessionID = reply.SessionID

		fmt.Fprintf(out, "\nGuia: %s\n", reply.Output)

		prefix = "🏠Presente"
		if name, ok := g.Locate(reply.Travel); ok {
			prefix = "📍" + name
		}
	}
}
