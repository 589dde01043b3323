package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lojasmm/dmassist/internal/ai"
	"github.com/lojasmm/dmassist/internal/api"
	"github.com/lojasmm/dmassist/internal/config"
	"github.com/lojasmm/dmassist/internal/router"
	"github.com/lojasmm/dmassist/internal/store"
	"github.com/lojasmm/dmassist/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var outcomes api.OutcomeStore
	if cfg.OutcomesEnabled {
		db, err := store.NewBoltStore(filepath.Join(cfg.DataDir, "dmassist.db"))
		if err != nil {
			log.Fatalf("store: %v", err)
		}
		defer db.Close()
		outcomes = db
	}

	llm := ai.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAITimeout)
	assistant := ai.NewAssistant(llm, ai.Options{
		TranslateTemperature: cfg.TranslateTemperature,
		ReplyTemperature:     cfg.ReplyTemperature,
	})

	apiHandler := api.NewHandler(assistant, outcomes)
	webHandler := web.NewHandler(router.GeneratePath)

	// Two sequential completions must fit in one response.
	writeTimeout := 2*cfg.OpenAITimeout + 10*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(apiHandler, webHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("dmassist: listening on :%s (model %s)", cfg.Port, cfg.OpenAIModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("dmassist: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("dmassist: stopped")
}
