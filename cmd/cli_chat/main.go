package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatbot-router/internal/config"
	"chatbot-router/internal/db"
	"chatbot-router/internal/domain"
	"chatbot-router/internal/email"
	"chatbot-router/internal/messenger"
	"chatbot-router/internal/nlu"
	"chatbot-router/internal/repository"
	"chatbot-router/internal/service"
	"chatbot-router/internal/weather"
)

const cliUserID = "cli-user"

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal(err)
	}

	console := messenger.NewConsoleClient(os.Stdout)
	scheduler := service.NewTimerScheduler()
	nluClient := nlu.NewHTTPClient(cfg.NLUBaseURL, cfg.NLUAccessToken, cfg.NLULang, logger)
	weatherClient := weather.NewHTTPClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, logger)

	applicationSvc := service.NewJobApplicationService(
		repository.NewPgJobApplicationRepository(pool),
		email.NewDisabledSender("cli"),
		logger,
	)
	registry := service.NewSessionRegistry(repository.NewMemorySessionStore(), repository.NewMemoryProfileStore(), nil, nil, logger)
	sequencer := service.NewReplySequencer(console, scheduler, time.Duration(cfg.ReplyIntervalMS)*time.Millisecond, logger)
	dispatcher := service.NewActionDispatcher(console, weatherClient, applicationSvc, scheduler, time.Duration(cfg.FAQFollowupDelayMS)*time.Millisecond, logger)
	interpreter := service.NewResponseInterpreter(console, sequencer, dispatcher, logger)
	bot := service.NewBotService(console, nluClient, registry, interpreter, logger)

	// las postulaciones se guardan en segundo plano; hay que esperarlas antes de cerrar el pool
	defer dispatcher.Wait()

	fmt.Println("===== Console chat =====")
	fmt.Println("Escribe un mensaje; /start simula GET_STARTED, /apply simula JOB_APPLY, /exit sale.")

	for {
		fmt.Print("you> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		ev := domain.InboundEvent{
			Sender:    domain.Participant{ID: cliUserID},
			Recipient: domain.Participant{ID: "console"},
			Timestamp: time.Now().UnixMilli(),
		}
		switch line {
		case "/exit":
			return
		case "/start":
			ev.Postback = &domain.Postback{Payload: service.PayloadGetStarted}
		case "/apply":
			ev.Postback = &domain.Postback{Payload: service.PayloadJobApply}
		default:
			ev.Message = &domain.InboundMessage{MID: fmt.Sprintf("cli-%d", ev.Timestamp), Text: line}
		}

		kind := bot.HandleEvent(ctx, ev)
		logger.Debug("event handled", zap.String("kind", kind.String()))
	}
}
