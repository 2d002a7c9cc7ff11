package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/kmcheng/discusshub-backend/api/auth"
	"github.com/kmcheng/discusshub-backend/api/category"
	"github.com/kmcheng/discusshub-backend/api/discussion"
	"github.com/kmcheng/discusshub-backend/api/group"
	"github.com/kmcheng/discusshub-backend/api/socket"
	"github.com/kmcheng/discusshub-backend/api/upload"
	"github.com/kmcheng/discusshub-backend/api/user"
	_ "github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/mq"
	"github.com/kmcheng/discusshub-backend/server"
	"github.com/kmcheng/discusshub-backend/ws"
	"github.com/nsqio/go-nsq"
)

func cleanup(hub *ws.Hub, consumer *nsq.Consumer) {
	if consumer != nil {
		consumer.Stop()
	}
	mq.StopProducers()
	hub.Close()
}

func main() {
	logger := log.New(os.Stdout, "discusshub", log.LstdFlags|log.Lshortfile)

	hub := ws.NewHub()
	go hub.Run()

	consumer, err := mq.StartBroadcastConsumer(logger, hub)
	if err != nil {
		logger.Fatalln(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cleanup(hub, consumer)
		fmt.Println("quit")
		os.Exit(0)
	}()

	r := chi.NewRouter()
	server.SetupMiddlewares(r)

	authHandlers := auth.NewHandlers(logger)
	authHandlers.SetupRoutes(r)

	userHandlers := user.NewHandlers(logger)
	userHandlers.SetupRoutes(r)

	grpHandlers := group.NewHandlers(logger)
	grpHandlers.SetupRoutes(r)

	catHandlers := category.NewHandlers(logger)
	catHandlers.SetupRoutes(r)

	discHandlers := discussion.NewHandlers(logger)
	discHandlers.SetupRoutes(r)

	uploadHandlers := upload.NewHandlers(logger)
	uploadHandlers.SetupRoutes(r)

	wsHandlers := socket.NewHandlers(logger, hub)
	wsHandlers.SetupRoutes(r)

	srv := server.New(r)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalln(err)
	}
}
